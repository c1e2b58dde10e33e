package service

import (
	"checkout/blockchain/sol"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

type WalletsService struct {
	secrets *SecretsService
}

func NewWalletsService(secrets *SecretsService) *WalletsService {
	return &WalletsService{secrets: secrets}
}

// fresh keypair per session. the private half leaves this function sealed
func (s *WalletsService) Generate() (address string, sealedSecret string, err error) {
	address, private, err := sol.NewWallet()
	if err != nil {
		return "", "", fmt.Errorf("new wallet: %w", err)
	}

	sealedSecret, err = s.secrets.Seal(private, address)
	if err != nil {
		return "", "", err
	}

	return address, sealedSecret, nil
}

// unseals the secret and checks that it still derives address
func (s *WalletsService) Open(sealedSecret string, address string) (solana.PrivateKey, error) {
	private, err := s.secrets.Open(sealedSecret, address)
	if err != nil {
		return nil, err
	}

	key, err := sol.StringToPriv(private)
	if err != nil {
		return nil, err
	}

	if key.PublicKey().String() != address {
		return nil, fmt.Errorf("custodial secret does not match address %s", address)
	}

	return key, nil
}
