package eastmoney

import (
	"encoding/base64"
	"testing"
)

func TestEncryptPassword(t *testing.T) {
	out, err := EncryptPassword("hunter2")
	if err != nil {
		t.Fatalf("EncryptPassword: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(out)
	if err != nil {
		t.Fatalf("output is not base64: %v", err)
	}
	// 1024-bit gateway key: the ciphertext is exactly one RSA block.
	if len(raw) != 128 {
		t.Errorf("ciphertext is %d bytes, want 128", len(raw))
	}

	// PKCS#1 v1.5 padding is randomized, so two encryptions of the same
	// password must differ.
	again, err := EncryptPassword("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if again == out {
		t.Error("two encryptions produced identical ciphertext")
	}
}

func TestEncryptPasswordTooLong(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := EncryptPassword(string(long)); err == nil {
		t.Error("EncryptPassword accepted a password longer than one RSA block")
	}
}
