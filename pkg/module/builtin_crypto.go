package module

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"filippo.io/edwards25519"
	"github.com/yasakei/neutron/pkg/value"
)

func init() {
	register("crypto", cryptoModule{})
}

type cryptoModule struct{}

// Natives carries forward AES-CBC/SHA/MD5/base64 primitives verbatim in
// spirit, and adds an Ed25519 sign/verify pair with no analog in the
// prior single-file primitives module (the original runtime exposes a
// signing primitive this core didn't have before).
func (cryptoModule) Natives(interface{}) map[string]*value.NativeFn {
	return map[string]*value.NativeFn{
		"aesEncrypt": fn("aesEncrypt", 2, func(h Host, args []value.Value) (value.Value, error) {
			out, err := aesEncrypt(args[0].ToString(), args[1].ToString())
			if err != nil {
				return value.Nil(), err
			}
			return value.FromObject(h.AllocString(out)), nil
		}),
		"aesDecrypt": fn("aesDecrypt", 2, func(h Host, args []value.Value) (value.Value, error) {
			out, err := aesDecrypt(args[0].ToString(), args[1].ToString())
			if err != nil {
				return value.Nil(), err
			}
			return value.FromObject(h.AllocString(out)), nil
		}),
		"sha256": fn("sha256", 1, func(h Host, args []value.Value) (value.Value, error) {
			sum := sha256.Sum256([]byte(args[0].ToString()))
			return value.FromObject(h.AllocString(hex.EncodeToString(sum[:]))), nil
		}),
		"sha512": fn("sha512", 1, func(h Host, args []value.Value) (value.Value, error) {
			sum := sha512.Sum512([]byte(args[0].ToString()))
			return value.FromObject(h.AllocString(hex.EncodeToString(sum[:]))), nil
		}),
		"md5": fn("md5", 1, func(h Host, args []value.Value) (value.Value, error) {
			sum := md5.Sum([]byte(args[0].ToString()))
			return value.FromObject(h.AllocString(hex.EncodeToString(sum[:]))), nil
		}),
		"base64Encode": fn("base64Encode", 1, func(h Host, args []value.Value) (value.Value, error) {
			return value.FromObject(h.AllocString(base64.StdEncoding.EncodeToString([]byte(args[0].ToString())))), nil
		}),
		"base64Decode": fn("base64Decode", 1, func(h Host, args []value.Value) (value.Value, error) {
			data, err := base64.StdEncoding.DecodeString(args[0].ToString())
			if err != nil {
				return value.Nil(), err
			}
			return value.FromObject(h.AllocString(string(data))), nil
		}),
		"generateKeyPair": fn("generateKeyPair", 0, func(h Host, args []value.Value) (value.Value, error) {
			pub, priv, err := ed25519.GenerateKey(rand.Reader)
			if err != nil {
				return value.Nil(), err
			}
			m := h.AllocMapObject()
			m.Set("public", value.FromObject(h.AllocString(base64.StdEncoding.EncodeToString(pub))))
			m.Set("private", value.FromObject(h.AllocString(base64.StdEncoding.EncodeToString(priv))))
			return value.FromObject(m), nil
		}),
		"sign": fn("sign", 2, func(h Host, args []value.Value) (value.Value, error) {
			priv, err := base64.StdEncoding.DecodeString(args[0].ToString())
			if err != nil || len(priv) != ed25519.PrivateKeySize {
				return value.Nil(), fmt.Errorf("invalid Ed25519 private key")
			}
			sig := ed25519.Sign(ed25519.PrivateKey(priv), []byte(args[1].ToString()))
			return value.FromObject(h.AllocString(base64.StdEncoding.EncodeToString(sig))), nil
		}),
		"verify": fn("verify", 3, func(h Host, args []value.Value) (value.Value, error) {
			pub, err := base64.StdEncoding.DecodeString(args[0].ToString())
			if err != nil || len(pub) != ed25519.PublicKeySize {
				return value.Bool(false), nil
			}
			// Reject public keys that don't decode to a valid point on
			// the curve before trusting ed25519.Verify's constant-time
			// comparison with them.
			if _, err := edwards25519.NewIdentityPoint().SetBytes(pub); err != nil {
				return value.Bool(false), nil
			}
			sig, err := base64.StdEncoding.DecodeString(args[2].ToString())
			if err != nil {
				return value.Bool(false), nil
			}
			return value.Bool(ed25519.Verify(ed25519.PublicKey(pub), []byte(args[1].ToString()), sig)), nil
		}),
	}
}

func aesEncrypt(data, key string) (string, error) {
	keyBytes := []byte(key)
	if len(keyBytes) != 32 {
		return "", fmt.Errorf("AES key must be 32 bytes, got %d", len(keyBytes))
	}
	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return "", err
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}
	plaintext := []byte(data)
	padding := aes.BlockSize - (len(plaintext) % aes.BlockSize)
	padded := make([]byte, len(plaintext)+padding)
	copy(padded, plaintext)
	for i := len(plaintext); i < len(padded); i++ {
		padded[i] = byte(padding)
	}
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	return base64.StdEncoding.EncodeToString(append(iv, ciphertext...)), nil
}

func aesDecrypt(data, key string) (string, error) {
	keyBytes := []byte(key)
	if len(keyBytes) != 32 {
		return "", fmt.Errorf("AES key must be 32 bytes, got %d", len(keyBytes))
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", err
	}
	if len(raw) < aes.BlockSize {
		return "", fmt.Errorf("ciphertext too short")
	}
	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return "", err
	}
	iv, ciphertext := raw[:aes.BlockSize], raw[aes.BlockSize:]
	if len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("ciphertext is not a multiple of the block size")
	}
	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)
	if len(plain) == 0 {
		return "", nil
	}
	padding := int(plain[len(plain)-1])
	if padding <= 0 || padding > aes.BlockSize || padding > len(plain) {
		return "", fmt.Errorf("invalid padding")
	}
	return string(plain[:len(plain)-padding]), nil
}
