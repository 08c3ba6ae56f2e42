package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/itmade/itmade-api/internal/contactform"
	"github.com/itmade/itmade-api/pkg/httpclient"
)

const healthPath = "/api/contact/health"

type rootOptions struct {
	baseURL string
	timeout time.Duration
}

type sendOptions struct {
	form          contactform.Form
	fallbackEmail string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "contactctl",
		Short:         "Check and exercise the ITMade contact endpoint",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", "http://localhost:3001", "site root serving /api")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")

	root.AddCommand(newHealthCmd(opts), newSendCmd(opts))
	return root
}

func newHealthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show whether the email transport is configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := httpclient.NewClientWithTimeout(opts.timeout)
			resp, err := httpclient.Get(cmd.Context(), client, strings.TrimSuffix(opts.baseURL, "/")+healthPath)
			if err != nil {
				return fmt.Errorf("health request failed: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("health endpoint returned %d: %s", resp.StatusCode, httpclient.ReadBody(resp, 1024))
			}

			var body map[string]any
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				return fmt.Errorf("invalid health response: %w", err)
			}

			configured := false
			for key, value := range body {
				if strings.HasSuffix(key, "_configured") {
					ok, _ := value.(bool)
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %t\n", strings.TrimSuffix(key, "_configured"), ok)
					configured = ok
				}
			}
			if !configured {
				return errors.New("email transport is not configured")
			}
			return nil
		},
	}
}

func newSendCmd(opts *rootOptions) *cobra.Command {
	s := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Submit a message the way the site form does",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			controller := contactform.New(opts.baseURL, httpclient.NewClientWithTimeout(opts.timeout), s.fallbackEmail)
			status := controller.Submit(cmd.Context(), s.form)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, status.Message)
			for _, e := range status.Errors {
				fmt.Fprintf(out, "  - %s\n", e)
			}

			if status.Kind != contactform.StatusSuccess {
				return fmt.Errorf("submission %s", status.Kind)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&s.form.Name, "name", "", "sender name")
	flags.StringVar(&s.form.Email, "email", "", "sender email, used as reply-to")
	flags.StringVar(&s.form.Subject, "subject", "", "message subject")
	flags.StringVar(&s.form.Message, "message", "", "message body")
	flags.StringVar(&s.fallbackEmail, "fallback-email", "contact@itmade.fr", "address shown when sending fails")

	return cmd
}
