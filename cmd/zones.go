package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tempusbreve/cloudflare-dns-bot/internal/cloudflare"
)

var zonesCmd = &cobra.Command{
	Use:     "zones",
	Short:   "List zones visible to the API token",
	GroupID: dnsGroup,
	Run: func(cmd *cobra.Command, args []string) {
		cf := cloudflare.NewClient(
			cloudflare.WithToken(zonesOpts.token),
			cloudflare.WithLogger(newLogger().WithField("component", "cloudflare")),
		)

		zones, err := cf.ListZones(cmd.Context())
		cobra.CheckErr(err)

		for _, zone := range zones {
			cmd.Printf("%s: %s (%s)\n", zone.ID, zone.Name, zone.Status)
		}
	},
}

var zonesOpts = struct {
	token string
}{}

func init() {
	rootCmd.AddCommand(zonesCmd)

	zonesCmd.Flags().StringVar(&zonesOpts.token, "cloudflare-token", "", "Token for Cloudflare auth")
	_ = zonesCmd.MarkFlagRequired("cloudflare-token")
}
