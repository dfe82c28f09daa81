package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"carmarket/internal/models"
	"carmarket/internal/repository"
	"carmarket/internal/service"

	"github.com/spf13/cobra"
)

func newPostsCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Read and write on the community board",
	}

	var (
		category string
		search   string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			posts, err := env.App.Community.ListPosts(cmd.Context(), repository.PostQuery{
				Category: models.PostCategory(category),
				Search:   search,
			})
			if err != nil {
				return describe(err)
			}
			printPosts(cmd.OutOrStdout(), posts)
			return nil
		},
	}
	list.Flags().StringVar(&category, "category", "", "review, question, tip or general")
	list.Flags().StringVarP(&search, "query", "q", "", "text in title or content")

	var draft service.CreatePostInput
	var draftCategory string
	create := &cobra.Command{
		Use:   "new",
		Short: "Write a post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			me, err := env.identity()
			if err != nil {
				return err
			}
			draft.Category = models.PostCategory(draftCategory)
			post, err := env.App.Community.CreatePost(cmd.Context(), me, draft)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Posted %q (%s)\n", post.Title, post.ID)
			return nil
		},
	}
	create.Flags().StringVar(&draft.Title, "title", "", "post title")
	create.Flags().StringVar(&draft.Content, "content", "", "post body")
	create.Flags().StringVar(&draftCategory, "category", string(models.CategoryGeneral), "review, question, tip or general")

	cmd.AddCommand(list, create,
		&cobra.Command{
			Use:   "show <post-id>",
			Short: "Read a post and its comments",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				detail, err := env.App.Community.ViewPost(cmd.Context(), args[0])
				if err != nil {
					return describe(err)
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "[%s] %s\n", detail.Category, detail.Title)
				fmt.Fprintf(w, "%s · 좋아요 %d · 조회 %d\n\n%s\n", detail.AuthorName, detail.Likes, detail.Views, detail.Content)
				if len(detail.Comments) > 0 {
					fmt.Fprintln(w)
				}
				for _, c := range detail.Comments {
					fmt.Fprintf(w, "  %s: %s (%d)\n", c.AuthorName, c.Content, c.Likes)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "like <post-id>",
			Short: "Like a post, or undo your like",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				me, err := env.identity()
				if err != nil {
					return err
				}
				post, err := env.App.Community.TogglePostLike(cmd.Context(), me, args[0])
				if err != nil {
					return describe(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%q now has %d likes\n", post.Title, post.Likes)
				return nil
			},
		},
		&cobra.Command{
			Use:   "comment <post-id> <text>",
			Short: "Comment on a post",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				me, err := env.identity()
				if err != nil {
					return err
				}
				_, err = env.App.Community.CreateComment(cmd.Context(), me, service.CreateCommentInput{
					PostID:  args[0],
					Content: joinArgs(args[1:]),
				})
				if err != nil {
					return describe(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Comment added")
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <post-id>",
			Short: "Delete one of your posts",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				me, err := env.identity()
				if err != nil {
					return err
				}
				if err := env.App.Community.DeletePost(cmd.Context(), me, args[0]); err != nil {
					return describe(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Post deleted")
				return nil
			},
		},
	)
	return cmd
}

func printPosts(w io.Writer, posts []models.Post) {
	if len(posts) == 0 {
		fmt.Fprintln(w, "No posts")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tTITLE\tAUTHOR\tLIKES\tVIEWS")
	for _, p := range posts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n", p.ID, p.Category, p.Title, p.AuthorName, p.Likes, p.Views)
	}
	_ = tw.Flush()
}
