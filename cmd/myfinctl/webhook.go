package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fanzirfan/MyFinance/internal/telegram"
)

func newWebhookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Manage the Telegram webhook registration",
	}

	var url string
	set := &cobra.Command{
		Use:   "set",
		Short: "Register the webhook URL and secret with Telegram",
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				url = cfg.TelegramWebhookURL
			}
			if url == "" {
				return errors.New("no webhook URL: pass --url or set TELEGRAM_WEBHOOK_URL")
			}
			if cfg.TelegramWebhookSecret == "" {
				return errors.New("TELEGRAM_WEBHOOK_SECRET is not set")
			}
			client, err := telegram.New(cfg.TelegramBotToken, "", cfg.HTTPTimeout)
			if err != nil {
				return err
			}
			if err := client.SetWebhook(cmd.Context(), url, cfg.TelegramWebhookSecret); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Webhook set to %s\n", url)
			return nil
		},
	}
	set.Flags().StringVar(&url, "url", "", "Public webhook URL (defaults to TELEGRAM_WEBHOOK_URL)")

	var dropPending bool
	del := &cobra.Command{
		Use:   "delete",
		Short: "Remove the webhook registration",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := telegram.New(cfg.TelegramBotToken, "", cfg.HTTPTimeout)
			if err != nil {
				return err
			}
			if err := client.DeleteWebhook(cmd.Context(), dropPending); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Webhook deleted")
			return nil
		},
	}
	del.Flags().BoolVar(&dropPending, "drop-pending", false, "Discard updates Telegram has queued")

	info := &cobra.Command{
		Use:   "info",
		Short: "Show the current webhook registration",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := telegram.New(cfg.TelegramBotToken, "", cfg.HTTPTimeout)
			if err != nil {
				return err
			}
			wi, err := client.WebhookInfo(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "URL:             %s\n", wi.URL)
			fmt.Fprintf(out, "Pending updates: %d\n", wi.PendingUpdateCount)
			if wi.LastErrorMessage != "" {
				fmt.Fprintf(out, "Last error:      %s\n", wi.LastErrorMessage)
			}
			return nil
		},
	}

	cmd.AddCommand(set, del, info)
	return cmd
}
