package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/yli59577/puyuann/pkg/cryptox"
	"github.com/yli59577/puyuann/pkg/jwtx"
)

// signingKeys is the loaded token key material.
type signingKeys struct {
	keys     *jwtx.KeySet
	signer   jwtx.Signer
	verifier jwtx.Verifier
}

// initSigningKeys loads the Ed25519 signing key from cfg.SigningKeyFile,
// creating it on first start. With no file configured a key is generated in
// memory and every session is invalidated on restart.
func initSigningKeys(cfg Config, now func() time.Time, logger *slog.Logger) (signingKeys, error) {
	var (
		pemKey []byte
		err    error
	)
	if cfg.SigningKeyFile == "" {
		pemKey, err = cryptox.GenerateEd25519Key()
		if err != nil {
			return signingKeys{}, fmt.Errorf("generate signing key: %w", err)
		}
		logger.Warn("using ephemeral signing key, sessions will not survive restarts")
	} else {
		pemKey, err = cryptox.LoadOrCreateEd25519Key(cfg.SigningKeyFile)
		if err != nil {
			return signingKeys{}, fmt.Errorf("load signing key: %w", err)
		}
	}

	signer, err := jwtx.NewSignerEdDSA("", pemKey)
	if err != nil {
		return signingKeys{}, fmt.Errorf("parse signing key: %w", err)
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return signingKeys{}, fmt.Errorf("register signing key: %w", err)
	}

	logger.Info("signing key loaded",
		slog.String("alg", signer.Alg()),
		slog.String("kid", signer.KID()),
		slog.String("issuer", cfg.TokenIssuer),
	)

	return signingKeys{
		keys:     keys,
		signer:   signer,
		verifier: jwtx.NewVerifierEdDSA(keys, cfg.TokenIssuer, now),
	}, nil
}

func loadPepper(cfg Config) (string, error) {
	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return "", fmt.Errorf("load pepper: %w", err)
	}
	return pepper, nil
}
