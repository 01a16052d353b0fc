package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/talent-sift/internal/validation"
)

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key [key]",
	Short: "Print the bcrypt hash of a proxy key for PROXY_KEY_HASH",
	Long:  "Validates a proxy key and prints its bcrypt hash. The key is read from the argument or, if omitted, from the first line of stdin.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHashKey,
}

func init() {
	rootCmd.AddCommand(hashKeyCmd)
}

func runHashKey(cmd *cobra.Command, args []string) error {
	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read key from stdin: %w", err)
		}
		key = strings.TrimSpace(line)
	}

	hash, err := validation.HashProxyKey(key)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
