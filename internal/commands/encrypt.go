package commands

import (
	"github.com/spf13/cobra"

	"finlens/internal/config"
	"finlens/internal/logging"
	"finlens/internal/services/storage"
)

func openStore(dir string) (*storage.Store, error) {
	if dir == "" {
		dir = config.Load().UploadsDirectory
	}
	return storage.New(dir)
}

func newEncryptCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt stored statements with a passphrase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(dir)
			if err != nil {
				return err
			}
			passphrase, err := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()).confirm("New passphrase: ")
			if err != nil {
				return err
			}
			if err := store.EnableEncryption(passphrase); err != nil {
				return err
			}
			logging.Component("storage").Info("statement store encrypted", "dir", store.Dir())
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "statement directory (defaults to the configured uploads directory)")
	return cmd
}

func newDecryptCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Remove encryption from stored statements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(dir)
			if err != nil {
				return err
			}
			passphrase, err := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()).read("Passphrase: ")
			if err != nil {
				return err
			}
			if err := store.DisableEncryption(passphrase); err != nil {
				return err
			}
			logging.Component("storage").Info("statement store decrypted", "dir", store.Dir())
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "statement directory (defaults to the configured uploads directory)")
	return cmd
}
