package auth

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"sync"
	"time"
)

var (
	// ErrKeySetUnavailable - не удалось получить набор ключей издателя.
	ErrKeySetUnavailable = errors.New("unable to fetch JWKS")
	// ErrKeyNotFound - в наборе нет ключа с запрошенным kid.
	ErrKeyNotFound = errors.New("signing key not found in JWKS")
)

type jsonWebKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwksDocument struct {
	Keys []jsonWebKey `json:"keys"`
}

// JWKSClient получает публичные ключи издателя с well-known адреса
// и кэширует их на заданный TTL, чтобы не ходить в сеть на каждый запрос.
type JWKSClient struct {
	url        string
	ttl        time.Duration
	httpClient *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

func NewJWKSClient(url string, ttl, fetchTimeout time.Duration) *JWKSClient {
	return &JWKSClient{
		url:        url,
		ttl:        ttl,
		httpClient: &http.Client{Timeout: fetchTimeout},
	}
}

// SigningKey возвращает ключ по kid, при устаревшем кэше обновляет набор.
// Отсутствие kid в свежем наборе не приводит к повторному запросу.
func (c *JWKSClient) SigningKey(kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	if c.keys != nil && time.Since(c.fetchedAt) < c.ttl {
		key, ok := c.keys[kid]
		c.mu.RUnlock()
		if !ok {
			return nil, ErrKeyNotFound
		}
		return key, nil
	}
	c.mu.RUnlock()

	keys, err := c.fetch()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.keys = keys
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	key, ok := keys[kid]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return key, nil
}

func (c *JWKSClient) fetch() (map[string]*rsa.PublicKey, error) {
	resp, err := c.httpClient.Get(c.url)
	if err != nil {
		log.Printf("❌ Error fetching JWKS from %s: %v", c.url, err)
		return nil, fmt.Errorf("%w: %v", ErrKeySetUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("❌ JWKS endpoint %s returned status %d", c.url, resp.StatusCode)
		return nil, fmt.Errorf("%w: unexpected status %d", ErrKeySetUnavailable, resp.StatusCode)
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		log.Printf("❌ Error decoding JWKS: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrKeySetUnavailable, err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, jwk := range doc.Keys {
		if jwk.Kty != "RSA" || jwk.Kid == "" {
			continue
		}
		key, err := parseRSAPublicKey(jwk)
		if err != nil {
			log.Printf("⚠️ Skipping JWKS key %s: %v", jwk.Kid, err)
			continue
		}
		keys[jwk.Kid] = key
	}

	return keys, nil
}

func parseRSAPublicKey(jwk jsonWebKey) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(jwk.N)
	if err != nil {
		return nil, fmt.Errorf("invalid modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(jwk.E)
	if err != nil {
		return nil, fmt.Errorf("invalid exponent: %w", err)
	}

	n := new(big.Int).SetBytes(nBytes)
	e := new(big.Int).SetBytes(eBytes)
	if !e.IsInt64() || e.Int64() <= 0 {
		return nil, fmt.Errorf("exponent out of range")
	}

	return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil
}
