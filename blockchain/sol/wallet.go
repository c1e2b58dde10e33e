package sol

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

func NewWallet() (address string, privateKey string, err error) {
	priv, err := solana.NewRandomPrivateKey()
	if err != nil {
		return "", "", err
	}
	address = priv.PublicKey().String()
	privateKey = priv.String()

	return address, privateKey, nil
}

func StringToPBC(addr string) (solana.PublicKey, error) {
	return solana.PublicKeyFromBase58(addr)
}

func StringToPriv(privateKey string) (solana.PrivateKey, error) {
	priv, err := solana.PrivateKeyFromBase58(privateKey)
	if err != nil {
		return nil, err
	}
	if len(priv) != 64 {
		return nil, fmt.Errorf("invalid private key length: %d", len(priv))
	}
	return priv, nil
}

// address derived from a base58 private key
func AddressOf(privateKey string) (string, error) {
	priv, err := StringToPriv(privateKey)
	if err != nil {
		return "", err
	}
	return priv.PublicKey().String(), nil
}

func IsValidAddress(addr string) bool {
	_, err := StringToPBC(addr)
	return err == nil
}
