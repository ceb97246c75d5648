package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KylerLong-dev/author-site/content"
)

var (
	postsPage  int
	postsLimit int
	postsTag   string
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "List posts from the configured content backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := content.New(appConfig.Content, logger)
		res := svc.ListPosts(cmd.Context(), postsPage, postsLimit, postsTag)
		if err := resultErr(res.Status, res.Err); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "backend: %s\n", svc.BackendName())
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PUBLISHED\tSLUG\tTITLE\tREAD")
		for _, p := range res.Data.Posts {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d min\n",
				p.PublishedAt.Format("2006-01-02"), p.Slug, p.Title, content.ReadingTime(p.HTML))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if m := res.Data.Meta; m != nil {
			fmt.Fprintf(out, "page %d of %d (%d posts)\n", m.Page, m.Pages, m.Total)
		}
		return nil
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List tags with post counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := content.New(appConfig.Content, logger)
		res := svc.ListTags(cmd.Context())
		if err := resultErr(res.Status, res.Err); err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SLUG\tNAME\tPOSTS")
		for _, t := range res.Data {
			fmt.Fprintf(w, "%s\t%s\t%d\n", t.Slug, t.Name, t.Count.Posts)
		}
		return w.Flush()
	},
}

// resultErr turns a failed or invalid result into a command error.
func resultErr(status content.Status, err error) error {
	switch status {
	case content.StatusFailed:
		return fmt.Errorf("content backend unavailable: %w", err)
	case content.StatusInvalid:
		return err
	}
	return nil
}

func init() {
	postsCmd.Flags().IntVar(&postsPage, "page", 1, "page number")
	postsCmd.Flags().IntVar(&postsLimit, "limit", 0, "posts per page (default from config)")
	postsCmd.Flags().StringVar(&postsTag, "tag", "", "only posts with this tag slug")
}
