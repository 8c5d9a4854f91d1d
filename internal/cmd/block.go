package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jimezsa/clockedin/internal/prefs"
)

type BlockCmd struct {
	Add  BlockAddCmd  `cmd:"" help:"Block one or more companies."`
	Rm   BlockRmCmd   `cmd:"" help:"Unblock a company by ID or name."`
	List BlockListCmd `cmd:"" help:"List blocked companies."`
}

type BlockAddCmd struct {
	Names []string `arg:"" help:"Company names, as shown on job cards."`
}

type BlockRmCmd struct {
	Ref string `arg:"" help:"Entry ID or company name."`
}

type BlockListCmd struct{}

func (b *BlockAddCmd) Run(ctx *Context) error {
	store, release, err := ctx.OpenStore()
	if err != nil {
		return err
	}
	defer release()

	for _, name := range b.Names {
		entry, err := prefs.BlockCompany(context.Background(), store, name)
		if err != nil {
			return fmt.Errorf("block %q: %w", name, err)
		}
		ctx.Logger.Debug().Str("id", entry.ID).Str("company", entry.CompanyName).Msg("company blocked")
		ctx.UI.Successf("Blocked %s", entry.CompanyName)
	}
	return nil
}

func (b *BlockRmCmd) Run(ctx *Context) error {
	store, release, err := ctx.OpenStore()
	if err != nil {
		return err
	}
	defer release()

	removed, err := prefs.UnblockCompany(context.Background(), store, b.Ref)
	if err != nil {
		return err
	}
	if removed == 0 {
		return fmt.Errorf("no blocked company matches %q", b.Ref)
	}
	ctx.UI.Successf("Unblocked %s (%d)", b.Ref, removed)
	return nil
}

func (b *BlockListCmd) Run(ctx *Context) error {
	store, release, err := ctx.OpenStore()
	if err != nil {
		return err
	}
	defer release()

	list, err := prefs.LoadBlockList(context.Background(), store)
	if err != nil {
		return err
	}
	if ctx.JSONOutput {
		return writeJSON(ctx.Out, list)
	}
	if ctx.PlainText {
		for _, entry := range list {
			fmt.Fprintln(ctx.Out, strings.Join([]string{entry.ID, entry.CompanyName}, "\t"))
		}
		return nil
	}
	if len(list) == 0 {
		ctx.UI.Mutedf("No blocked companies")
		return nil
	}
	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "id\tcompany")
	for _, entry := range list {
		fmt.Fprintf(tw, "%s\t%s\n", entry.ID, entry.CompanyName)
	}
	return tw.Flush()
}
