package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/xiaot623/gogo/governor/internal/domain"
)

func runSweep(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.svc.Sweep(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d sessions and %d contexts\n", result.Sessions, result.Contexts)
	return nil
}

func runUsage(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	scope, id := domain.UsageScopeUser, usageUser
	if usageOrg != "" {
		scope, id = domain.UsageScopeOrg, usageOrg
	}
	summary, err := a.svc.GetUsage(ctx, scope, id)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode usage: %w", err)
	}
	return enc.Close()
}
