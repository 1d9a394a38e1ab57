package eastmoney

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
)

// loginPublicKey is the gateway's fixed RSA public key. Passwords are
// encrypted against it before being submitted to the Authentication endpoint.
const loginPublicKey = `-----BEGIN PUBLIC KEY-----
MIGfMA0GCSqGSIb3DQEBAQUAA4GNADCBiQKBgQDHdsyxT66pDG4p73yope7jxA92
c0AT4qIJ/xtbBcHkFPK77upnsfDTJiVEuQDH+MiMeb+XhCLNKZGp0yaUU6GlxZdp
+nLW8b7Kmijr3iepaDhcbVTsYBWchaWUXauj9Lrhz58/6AE/NF0aMolxIGpsi+ST
2hSHPu3GSXMdhPCkWQIDAQAB
-----END PUBLIC KEY-----`

// EncryptPassword encrypts the account password with the gateway public key
// and returns it base64 encoded. PKCS#1 v1.5 padding is randomized: two calls
// with the same password yield different ciphertexts, so encrypt again for
// every login attempt instead of keeping a result around.
func EncryptPassword(password string) (string, error) {
	block, _ := pem.Decode([]byte(loginPublicKey))
	if block == nil {
		return "", fmt.Errorf("cannot decode the login public key PEM block")
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return "", fmt.Errorf("cannot parse the login public key: %w", err)
	}
	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return "", fmt.Errorf("login public key is not an RSA key")
	}
	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, rsaKey, []byte(password))
	if err != nil {
		return "", fmt.Errorf("cannot encrypt the password: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}
