// Command storefront is a command-line client for a storefront backend:
// it manages the login session, browses the catalog and edits the
// shopping cart through the session manager.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/iliyamo/storefront-client/internal/api"
	"github.com/iliyamo/storefront-client/internal/catalog"
	"github.com/iliyamo/storefront-client/internal/config"
	"github.com/iliyamo/storefront-client/internal/queue"
	"github.com/iliyamo/storefront-client/internal/session"
	"github.com/iliyamo/storefront-client/internal/store"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront client: session, catalog and cart",
	Long: `Command-line client for a storefront backend.

Examples:
  storefront login alice@example.com secret
  storefront whoami
  storefront products --search shirt
  storefront cart add 507f1f77bcf86cd799439011 2
  storefront cart show
  storefront logout`,
	SilenceUsage: true,
}

func init() {
	cartCmd.AddCommand(cartShowCmd, cartAddCmd, cartUpdateCmd, cartRemoveCmd)
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, productsCmd, productCmd, categoriesCmd, cartCmd, watchCmd)
	productsCmd.Flags().String("search", "", "filter products by name")
	productsCmd.Flags().Int("page", 1, "page number")
}

// newManager builds the session manager from the environment and
// restores any persisted session.
func newManager(cmd *cobra.Command) *session.Manager {
	cfg := config.Load()

	var tokens store.TokenStore
	var cache store.StateCache
	switch cfg.StoreBackend {
	case "redis":
		if client := config.NewRedisClient(); client != nil {
			rs := store.NewRedisStore(client, cfg.StorePrefix, cfg.StoreTTL)
			tokens, cache = rs, rs
		} else {
			log.Printf("storefront: redis unreachable, falling back to file store")
		}
	case "memory":
		ms := store.NewMemoryStore()
		tokens, cache = ms, ms
	}
	if tokens == nil {
		fs, err := store.NewFileStore(cfg.StoreDir)
		if err != nil {
			log.Fatalf("storefront: open file store: %v", err)
		}
		tokens, cache = fs, fs
	}

	opts := []session.ManagerOption{
		session.WithTokenStore(tokens),
		session.WithStateCache(cache),
		session.WithDebounce(cfg.Debounce),
		session.WithRetryPolicy(api.RetryPolicy{MaxAttempts: cfg.RetryAttempts, Delay: cfg.RetryDelay}),
	}
	if cfg.EventsEnabled {
		opts = append(opts, session.WithEventSink(queue.NewAMQPSink(cfg.BrokerURL)))
	} else {
		opts = append(opts, session.WithEventSink(session.LogSink{}))
	}

	m := session.New(cfg.APIBaseURL, []api.Option{api.WithTimeout(cfg.HTTPTimeout)}, opts...)
	m.Restore(cmd.Context())
	return m
}

var loginCmd = &cobra.Command{
	Use:   "login <email> <password>",
	Short: "Log in and persist the session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newManager(cmd)
		res := m.Login(cmd.Context(), args[0], args[1])
		if !res.Success {
			return fmt.Errorf("login failed: %s", res.Message)
		}
		if !res.ProfileLoaded {
			fmt.Printf("logged in (profile pending: %s)\n", res.Message)
			return nil
		}
		u := m.User()
		fmt.Printf("logged in as %s <%s>\n", u.Name, u.Email)
		fmt.Printf("cart: %d item(s)\n", m.Cart().Count())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear local session state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newManager(cmd)
		m.Logout(cmd.Context())
		fmt.Println("logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newManager(cmd)
		if err := m.RefreshProfile(cmd.Context()); err != nil {
			// Network may be down; show the last-known-good snapshot.
			if snap, _ := m.Fallback(cmd.Context()); snap != nil {
				fmt.Printf("offline; last known state from %s (%d cart items)\n",
					snap.SavedAt.Format("2006-01-02 15:04:05"), snap.Count)
				return nil
			}
			fmt.Println("not logged in")
			return nil
		}
		u := m.User()
		role := "customer"
		if u.IsAdmin {
			role = "admin"
		}
		fmt.Printf("%s <%s> (%s), cart: %d item(s)\n", u.Name, u.Email, role, m.Cart().Count())
		return nil
	},
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List products",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newManager(cmd)
		search, _ := cmd.Flags().GetString("search")
		page, _ := cmd.Flags().GetInt("page")
		svc := catalog.NewService(m.Client())
		res, err := svc.ListProducts(cmd.Context(), catalog.ListParams{Search: search, Page: page})
		if err != nil {
			return err
		}
		for _, p := range res.Products {
			fmt.Printf("%s  %-30s  %8.2f\n", p.ID, p.Name, p.Price)
		}
		fmt.Printf("page %d/%d (%d total)\n", res.Page, res.Pages, res.Total)
		return nil
	},
}

var productCmd = &cobra.Command{
	Use:   "product <id>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newManager(cmd)
		svc := catalog.NewService(m.Client())
		p, err := svc.GetProduct(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s\n  id:    %s\n  slug:  %s\n  price: %.2f\n", p.Name, p.ID, p.Slug, p.Price)
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newManager(cmd)
		svc := catalog.NewService(m.Client())
		cats, err := svc.ListCategories(cmd.Context())
		if err != nil {
			return err
		}
		for _, c := range cats {
			fmt.Printf("%s  %s\n", c.ID, c.Name)
		}
		return nil
	},
}

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Inspect and edit the cart",
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newManager(cmd)
		if err := m.RefreshProfile(cmd.Context()); err != nil {
			return fmt.Errorf("not logged in: %w", err)
		}
		cart := m.Cart()
		if len(cart.Items) == 0 {
			fmt.Println("cart is empty")
			return nil
		}
		for _, it := range cart.Items {
			fmt.Printf("%s  %-30s  x%d  %8.2f\n", it.Product.ID, it.Product.Name, it.Quantity, it.Product.Price)
		}
		fmt.Printf("%d item(s)\n", cart.Count())
		return nil
	},
}

// mutationError turns a failed MutationResult into a CLI error.
func mutationError(res session.MutationResult) error {
	if res.Success {
		return nil
	}
	if res.LoginRequired {
		return fmt.Errorf("%s (run `storefront login` first)", res.Message)
	}
	return fmt.Errorf("%s", res.Message)
}

var cartAddCmd = &cobra.Command{
	Use:   "add <productId> <quantity>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newManager(cmd)
		if err := m.RefreshProfile(cmd.Context()); err != nil {
			log.Printf("storefront: profile refresh: %v", err)
		}
		qty, err := parseQty(args[1])
		if err != nil {
			return err
		}
		if err := mutationError(m.AddItem(cmd.Context(), args[0], qty)); err != nil {
			return err
		}
		fmt.Printf("added; cart now has %d item(s)\n", m.Cart().Count())
		return nil
	},
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update <productId> <quantity>",
	Short: "Set a cart line's quantity (0 removes it)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newManager(cmd)
		if err := m.RefreshProfile(cmd.Context()); err != nil {
			return fmt.Errorf("not logged in: %w", err)
		}
		qty, err := parseQty(args[1])
		if err != nil {
			return err
		}
		if err := mutationError(m.UpdateItem(cmd.Context(), args[0], qty)); err != nil {
			return err
		}
		fmt.Printf("updated; cart now has %d item(s)\n", m.Cart().Count())
		return nil
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <productId>",
	Short: "Remove a cart line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newManager(cmd)
		if err := m.RefreshProfile(cmd.Context()); err != nil {
			return fmt.Errorf("not logged in: %w", err)
		}
		if err := mutationError(m.RemoveItem(cmd.Context(), args[0])); err != nil {
			return err
		}
		fmt.Printf("removed; cart now has %d item(s)\n", m.Cart().Count())
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Consume session/cart events from RabbitMQ into logs/storefront.log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return queue.StartEventConsumer()
	},
}

func parseQty(s string) (int, error) {
	var qty int
	if _, err := fmt.Sscanf(s, "%d", &qty); err != nil {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return qty, nil
}
