package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func newHashPINCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-pin PIN",
		Short: "Print a bcrypt hash suitable for ADMIN_PIN_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pin := strings.TrimSpace(args[0])
			if pin == "" {
				return errors.New("PIN must not be blank")
			}
			h, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(h))
			return err
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 12, "bcrypt cost")
	return cmd
}
