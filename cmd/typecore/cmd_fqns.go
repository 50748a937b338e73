package main

import (
	"fmt"
	"strings"

	"github.com/funvibe/typecore/internal/config"
	"github.com/funvibe/typecore/internal/store"
	"github.com/spf13/cobra"
)

type fqnsOptions struct {
	order string
	save  string
	load  string
}

func newFqnsCmd(root *rootOptions) *cobra.Command {
	opts := &fqnsOptions{}
	cmd := &cobra.Command{
		Use:   "fqns",
		Short: "List the registered fully-qualified names",
		Long: `Lists the type namespace. The depth-first order prints the namespace as a
tree, registered names in bold on a terminal; the breadth-first order prints
one registered name per line, level by level within each top-level package.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFqns(cmd, root.app, opts)
		},
	}
	cmd.Flags().StringVar(&opts.order, "order", "dfs", "traversal order: dfs or bfs")
	cmd.Flags().StringVar(&opts.save, "save", "", "write a snapshot of the names to this SQLite file")
	cmd.Flags().StringVar(&opts.load, "load", "", "register the names of a SQLite snapshot first")
	return cmd
}

func runFqns(cmd *cobra.Command, a *app, opts *fqnsOptions) error {
	ctx := cmd.Context()

	if opts.order != "dfs" && opts.order != "bfs" {
		return fmt.Errorf("unknown order %q (want dfs or bfs)", opts.order)
	}

	if opts.load != "" {
		s, err := store.Open(ctx, opts.load)
		if err != nil {
			return err
		}
		names, err := s.Load(ctx)
		s.Close()
		if err != nil {
			return err
		}
		if err := defineNames(a.reg, names.Slice()); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	a.reg.Visit(opts.order == "bfs", func(fqn string, registered bool) bool {
		if opts.order == "bfs" {
			fmt.Fprintln(out, fqn)
			return true
		}
		depth := strings.Count(fqn, config.FqnDelimiter)
		segment := fqn[strings.LastIndex(fqn, config.FqnDelimiter)+1:]
		if registered {
			segment = emphasize(out, segment)
		}
		fmt.Fprintf(out, "%s%s\n", strings.Repeat("  ", depth), segment)
		return true
	})

	if opts.save != "" {
		s, err := store.Open(ctx, opts.save)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.Save(ctx, a.reg.Fqns()); err != nil {
			return err
		}
		a.logger.Info("saved snapshot", "path", opts.save)
	}
	return nil
}
