package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tempusbreve/cloudflare-dns-bot/internal/cloudflare"
	"github.com/tempusbreve/cloudflare-dns-bot/internal/workflow"
)

var recordsCmd = &cobra.Command{
	Use:     "records",
	Aliases: []string{"rec"},
	Short:   "Inspect and mutate DNS records",
	GroupID: dnsGroup,
}

var recOpts = struct {
	token  string
	zoneID string
}{}

func init() {
	rootCmd.AddCommand(recordsCmd)

	recordsCmd.PersistentFlags().StringVar(&recOpts.token, "cloudflare-token", "", "Token for Cloudflare auth")
	_ = recordsCmd.MarkPersistentFlagRequired("cloudflare-token")

	recordsCmd.PersistentFlags().StringVar(&recOpts.zoneID, "zone-id", "", "Cloudflare Zone ID")
	_ = recordsCmd.MarkPersistentFlagRequired("zone-id")
}

func recClient() *cloudflare.Client {
	return cloudflare.NewClient(
		cloudflare.WithToken(recOpts.token),
		cloudflare.WithDefaultZone(recOpts.zoneID),
		cloudflare.WithLogger(newLogger().WithField("component", "cloudflare")),
	)
}

var recordsListCmd = &cobra.Command{
	Use:   "list [type]",
	Short: "List DNS records",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var rtype cloudflare.RecordType
		if len(args) > 0 {
			rtype = cloudflare.RecordType(args[0])
		}

		records, err := recClient().ListAllRecords(cmd.Context(), "", rtype)
		cobra.CheckErr(err)

		for _, rec := range records {
			cmd.Printf("%s: %-5s %s :: %s (ttl %d, proxied %t)\n",
				rec.ID, rec.Type, rec.Name, rec.Content, rec.TTL, rec.Proxied)
		}
	},
}

var recordsAddCmd = &cobra.Command{
	Use:   "add <name> <type> <content>",
	Short: "Create a DNS record",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		ttl, err := workflow.ParseTTL(recAddOpts.ttl)
		cobra.CheckErr(err)

		record, err := recClient().CreateRecord(cmd.Context(), "", cloudflare.CreateRecordParams{
			Name:    args[0],
			Type:    cloudflare.RecordType(args[1]),
			Content: args[2],
			TTL:     ttl,
			Proxied: recAddOpts.proxied,
		})
		cobra.CheckErr(err)

		cmd.Printf("created %s: %s %s :: %s\n", record.ID, record.Type, record.Name, record.Content)
	},
}

var recAddOpts = struct {
	ttl     string
	proxied bool
}{}

var recordsUpdateCmd = &cobra.Command{
	Use:   "update <record-id> <content>",
	Short: "Update a DNS record's content, keeping other fields",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		content := args[1]
		record, err := recClient().UpdateRecord(cmd.Context(), "", args[0], cloudflare.UpdateRecordParams{
			Content: &content,
		})
		cobra.CheckErr(err)

		cmd.Printf("updated %s: %s %s :: %s\n", record.ID, record.Type, record.Name, record.Content)
	},
}

var recordsDeleteCmd = &cobra.Command{
	Use:   "delete <record-id>",
	Short: "Delete a DNS record by id",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cobra.CheckErr(recClient().DeleteRecord(cmd.Context(), "", args[0]))
		cmd.Printf("deleted %s\n", args[0])
	},
}

var recordsToggleCmd = &cobra.Command{
	Use:   "toggle-proxy <record-id>",
	Short: "Flip a record's Cloudflare proxy status",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		record, err := recClient().ToggleProxy(cmd.Context(), "", args[0])
		cobra.CheckErr(err)

		cmd.Printf("%s proxied=%t\n", record.Name, record.Proxied)
	},
}

func init() {
	recordsCmd.AddCommand(recordsListCmd, recordsAddCmd, recordsUpdateCmd, recordsDeleteCmd, recordsToggleCmd)

	recordsAddCmd.Flags().StringVar(&recAddOpts.ttl, "ttl", "auto", `TTL in seconds or "auto"`)
	recordsAddCmd.Flags().BoolVar(&recAddOpts.proxied, "proxied", false, "Proxy through Cloudflare (A/AAAA/CNAME only)")
}
