package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// InitCmd creates the init command.
func InitCmd() *cobra.Command {
	var (
		apiURL       string
		ownerID      string
		sessionToken string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Save client configuration",
		Long:  "Saves the API URL and scope identity to the global config file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(apiURL, ownerID, sessionToken)
		},
	}

	cmd.Flags().StringVar(&apiURL, "url", defaultAPIURL, "API base URL")
	cmd.Flags().StringVar(&ownerID, "owner", "", "Owner ID sent with requests")
	cmd.Flags().StringVar(&sessionToken, "session", "", "Session token sent with requests")

	return cmd
}

func runInit(apiURL, ownerID, sessionToken string) error {
	config := &GlobalConfig{
		APIURL:       apiURL,
		OwnerID:      ownerID,
		SessionToken: sessionToken,
	}

	if err := SaveGlobalConfig(config); err != nil {
		return err
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	fmt.Printf("Configuration saved to %s\n", configPath)

	// Probe the server so a bad URL fails here, not on first use
	api, err := NewAPIClientWithConfig(apiURL, ownerID, sessionToken)
	if err != nil {
		return err
	}
	if _, err := api.Get("/health"); err != nil {
		fmt.Printf("Warning: could not reach server at %s: %v\n", apiURL, err)
		return nil
	}

	fmt.Println("Server reachable.")
	return nil
}
