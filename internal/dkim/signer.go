// Package dkim signs outbound mail so relayed messages pass receiver
// authentication checks for the site's sending domain.
package dkim

import (
	"bytes"
	"crypto"
	"crypto/rsa"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/emersion/go-msgauth/dkim"
)

// Signer signs raw RFC 5322 messages for one domain/selector pair.
type Signer struct {
	key      *rsa.PrivateKey
	domain   string
	selector string
}

// NewSigner builds a signer from an already-loaded key.
func NewSigner(key *rsa.PrivateKey, domain, selector string) *Signer {
	return &Signer{key: key, domain: domain, selector: selector}
}

// NewSignerFromFile loads a PEM private key and builds a signer with it.
func NewSignerFromFile(keyFile, domain, selector string) (*Signer, error) {
	key, err := loadPrivateKey(keyFile)
	if err != nil {
		return nil, fmt.Errorf("load dkim key: %w", err)
	}
	return NewSigner(key, domain, selector), nil
}

// Sign returns the message with a DKIM-Signature header prepended, using
// relaxed/relaxed canonicalization and SHA-256.
func (s *Signer) Sign(message []byte) ([]byte, error) {
	options := &dkim.SignOptions{
		Domain:                 s.domain,
		Selector:               s.selector,
		Signer:                 s.key,
		Hash:                   crypto.SHA256,
		HeaderCanonicalization: dkim.CanonicalizationRelaxed,
		BodyCanonicalization:   dkim.CanonicalizationRelaxed,
	}

	var signed bytes.Buffer
	if err := dkim.Sign(&signed, bytes.NewReader(message), options); err != nil {
		return nil, fmt.Errorf("sign message: %w", err)
	}
	return signed.Bytes(), nil
}

// Domain returns the signing domain.
func (s *Signer) Domain() string { return s.domain }

// Selector returns the signing selector.
func (s *Signer) Selector() string { return s.selector }

// loadPrivateKey reads an RSA private key in PKCS#1 or PKCS#8 PEM form.
func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}
	return parseKeyBlock(block)
}
