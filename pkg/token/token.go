package token

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// UserClaims публичная часть данных пользователя внутри токена.
type UserClaims struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Email    string `json:"email"`
	Status   string `json:"status"`
}

type Claims struct {
	User UserClaims `json:"user"`
	jwt.RegisteredClaims
}

// Manager подписывает и проверяет RS256-токены.
// Ключевая пара создаётся один раз и переиспользуется,
// иначе каждая выдача токена инвалидировала бы предыдущие.
type Manager struct {
	private *rsa.PrivateKey
	public  *rsa.PublicKey
	ttl     time.Duration
}

func NewManager(privatePath, publicPath string, ttl time.Duration) (*Manager, error) {
	private, public, err := loadKeys(privatePath, publicPath)
	if errors.Is(err, os.ErrNotExist) {
		private, public, err = generateKeys(privatePath, publicPath)
	}
	if err != nil {
		return nil, err
	}

	return &Manager{private: private, public: public, ttl: ttl}, nil
}

func (m *Manager) Sign(subject string, user UserClaims) (string, error) {
	now := time.Now()
	claims := Claims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(m.private)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (m *Manager) Verify(raw string) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.public, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func loadKeys(privatePath, publicPath string) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	privatePEM, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, nil, err
	}
	publicPEM, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, nil, err
	}

	private, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	public, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return private, public, nil
}

func generateKeys(privatePath, publicPath string) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	private, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate key pair: %w", err)
	}

	privateDER, err := x509.MarshalPKCS8PrivateKey(private)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal private key: %w", err)
	}
	publicDER, err := x509.MarshalPKIXPublicKey(&private.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal public key: %w", err)
	}

	if err := writePEM(privatePath, "PRIVATE KEY", privateDER, 0o600); err != nil {
		return nil, nil, err
	}
	if err := writePEM(publicPath, "PUBLIC KEY", publicDER, 0o644); err != nil {
		return nil, nil, err
	}

	return private, &private.PublicKey, nil
}

func writePEM(path, blockType string, der []byte, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create keys dir: %w", err)
	}

	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
