package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims é o que a camada de auth REST da plataforma assina no token de
// sessão: o userId vai no subject padrão e o username numa claim própria.
type Claims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// Verifier valida a identidade declarada no handshake contra o token
// assinado pela mesma chave usada pelo auth REST. Sem chave configurada ele
// roda em modo guest e confia na identidade declarada (paridade com o
// ambiente de desenvolvimento, onde não há emissor de token).
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	if secret == "" {
		return &Verifier{}
	}
	return &Verifier{secret: []byte(secret)}
}

// Guest informa se o verifier está aceitando identidades sem token.
func (v *Verifier) Guest() bool {
	return len(v.secret) == 0
}

// Verify checa que o token é válido, não expirou e pertence à identidade
// declarada. Em modo guest sempre passa.
func (v *Verifier) Verify(userID, username, token string) error {
	if v.Guest() {
		return nil
	}

	if token == "" {
		return errors.New("missing token")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return fmt.Errorf("parse token: %w", err)
	}

	if claims.Subject != userID {
		return errors.New("token subject does not match userId")
	}
	if claims.Username != "" && claims.Username != username {
		return errors.New("token username does not match")
	}
	return nil
}
