package main

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/eringen/ogcard"
	"github.com/eringen/ogcard/og"
)

// cardParams are the card flags. They share names with the /og query
// parameters so both go through ogcard.ParseCardQuery.
var cardParams = []struct{ name, usage string }{
	{"title", "card title (required)"},
	{"excerpt", "short description"},
	{"author", "author handle"},
	{"series", "series name"},
	{"chapter", "chapter number"},
	{"readTime", "read time label"},
	{"date", "publish date label"},
	{"icon", "resource icon URL"},
	{"emoji", "resource emoji"},
	{"resource", "resource name shown under the emoji"},
	{"bg", "background colour"},
	{"border", "border colour"},
	{"textPrimary", "primary text colour"},
	{"textSecondary", "secondary text colour"},
	{"accentStart", "accent gradient start"},
	{"accentEnd", "accent gradient end"},
	{"resourceBg", "right panel background"},
	{"fontWeight", "title font weight"},
	{"borderWidth", "border width in pixels"},
}

func addCardFlags(cmd *cobra.Command) {
	for _, p := range cardParams {
		cmd.Flags().String(p.name, "", p.usage)
	}
	_ = cmd.MarkFlagRequired("title")
}

func cardFromFlags(cmd *cobra.Command) (og.Request, *og.StyleConfig) {
	q := url.Values{}
	for _, p := range cardParams {
		if f := cmd.Flags().Lookup(p.name); f != nil && f.Changed {
			q.Set(p.name, f.Value.String())
		}
	}
	return ogcard.ParseCardQuery(q)
}
