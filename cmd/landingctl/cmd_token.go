package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"landing/internal/platform/adminauth"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an admin bearer token signed with ADMIN_JWT_SECRET",
	RunE:  runToken,
}

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key",
	Short: "Read an API key from stdin and print its ADMIN_API_KEY_HASH",
	RunE:  runHashKey,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "who the token is for (required)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (defaults to ADMIN_TOKEN_TTL)")
	_ = tokenCmd.MarkFlagRequired("subject")
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ttl := tokenTTL
	if ttl <= 0 {
		ttl = cfg.Admin.TokenTTL
	}
	token, err := adminauth.New(cfg.Admin.JWTSecret, cfg.Admin.Issuer).Issue(tokenSubject, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func runHashKey(cmd *cobra.Command, _ []string) error {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	key := strings.TrimSpace(line)
	if key == "" {
		if err != nil {
			return fmt.Errorf("read key: %w", err)
		}
		return errors.New("empty key")
	}
	hash, err := adminauth.HashAPIKey(key)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
