package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/talent-sift/internal/board"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Print the visible candidates of a ranking result as JSON",
	RunE:  runFilter,
}

// filterFlags - общие флаги filter и export.
type filterFlags struct {
	in           string
	search       string
	score        string
	experience   string
	requireEmail bool
	requirePhone bool
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.in, "in", "i", "", "Path to a ranking result JSON file (required)")
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "Case-insensitive text search over name, email and justification")
	cmd.Flags().StringVar(&f.score, "score", "", "Score range lo:hi, either bound may be omitted")
	cmd.Flags().StringVar(&f.experience, "experience", "", "Experience range lo:hi in years")
	cmd.Flags().BoolVar(&f.requireEmail, "require-email", false, "Only candidates with an email")
	cmd.Flags().BoolVar(&f.requirePhone, "require-phone", false, "Only candidates with a phone")

	if err := cmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
}

func (f *filterFlags) patch() (board.FilterPatch, error) {
	var p board.FilterPatch
	if f.search != "" {
		p.SearchText = &f.search
	}

	var err error
	if p.ScoreRange, err = parseRange(f.score); err != nil {
		return p, fmt.Errorf("--score: %w", err)
	}
	if p.ExperienceRange, err = parseRange(f.experience); err != nil {
		return p, fmt.Errorf("--experience: %w", err)
	}
	if f.requireEmail {
		p.RequireEmail = &f.requireEmail
	}
	if f.requirePhone {
		p.RequirePhone = &f.requirePhone
	}
	return p, nil
}

// load читает файл, загружает доску и применяет фильтры.
func (f *filterFlags) load() (*board.Board, error) {
	raw, err := os.ReadFile(f.in)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.in, err)
	}

	p, err := f.patch()
	if err != nil {
		return nil, err
	}

	b := board.New()
	b.Load(raw)
	b.SetFilter(p)
	return b, nil
}

// parseRange разбирает "lo:hi", ":hi", "lo:" или одно число (lo=hi).
func parseRange(s string) (*board.RangePatch, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	loText, hiText, found := strings.Cut(s, ":")
	if !found {
		hiText = loText
	}

	var r board.RangePatch
	var err error
	if r.Lo, err = parseBound(loText); err != nil {
		return nil, err
	}
	if r.Hi, err = parseBound(hiText); err != nil {
		return nil, err
	}
	return &r, nil
}

func parseBound(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid bound %q", s)
	}
	return &v, nil
}

var filterOpts filterFlags

func init() {
	filterOpts.bind(filterCmd)
	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, _ []string) error {
	b, err := filterOpts.load()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(b.Snapshot()); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}
