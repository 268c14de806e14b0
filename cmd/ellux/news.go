package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pders01/ellux/internal/pages"
	"github.com/pders01/ellux/internal/tui"
)

func (c *cli) newsCmd() *cobra.Command {
	var (
		section      string
		page         int
		listSections bool
		open         string
	)
	cmd := &cobra.Command{
		Use:   "news",
		Short: "List top stories",
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			svc, err := c.services()
			if err != nil {
				return err
			}
			home := pages.NewHome(svc)
			if err := home.Load(contextFor(cmd)); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if listSections {
				for _, s := range home.Sections() {
					fmt.Fprintln(out, s)
				}
				return nil
			}
			if open != "" {
				if _, ok := home.Find(open); !ok {
					return fmt.Errorf("no loaded article with url %s", open)
				}
				return c.app.launcher.Open(open)
			}

			home.SetSection(section)
			if page < 1 || (page > home.Pages() && home.Pages() > 0) {
				return fmt.Errorf("page %d out of range (1-%d)", page, home.Pages())
			}
			home.GoTo(page)
			printNewsHeader(out, home)
			for _, v := range home.PageItems(page) {
				printArticle(out, v)
			}
			if home.HasMore() {
				fmt.Fprintf(out, "\nMore: ellux news --page %d\n", page+1)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&section, "section", "", "only show this section (\"all\" for everything)")
	cmd.Flags().IntVar(&page, "page", 1, "page to show")
	cmd.Flags().BoolVar(&listSections, "sections", false, "list the sections of the current stories")
	cmd.Flags().StringVar(&open, "open", "", "open the article with this url in the browser")
	return cmd
}

func printNewsHeader(out io.Writer, home *pages.Home) {
	section := home.Section()
	if section == "" {
		section = "all"
	}
	header := fmt.Sprintf("Top stories from %s • section %s • page %d/%d", home.Source(), section, home.Page(), home.Pages())
	fmt.Fprintln(out, tui.HeaderStyle.Render(header))
	if n := home.Migrated(); n > 0 {
		fmt.Fprintln(out, tui.MsgMigrated(n))
	}
	if lv := home.LastVisited(); lv != "" {
		fmt.Fprintf(out, "Last visit: %s\n", lv)
	}
	fmt.Fprintln(out)
}

func printArticle(out io.Writer, v pages.ArticleView) {
	mark := " "
	if v.Favorite {
		mark = "★"
	}
	fmt.Fprintf(out, "%s %s\n", mark, v.Article.Title)
	var meta []string
	if v.Section != "" {
		meta = append(meta, v.Section)
	}
	if !v.PublishedDate.IsZero() {
		meta = append(meta, v.PublishedDate.Format("Jan 2, 15:04"))
	}
	meta = append(meta, v.URL)
	fmt.Fprintf(out, "  %s\n", strings.Join(meta, " • "))
}
