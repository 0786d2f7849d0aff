package main

import (
	"fmt"
	"strings"

	"github.com/illmade-knight/go-destinations/pkg/aggregator"
	"github.com/illmade-knight/go-destinations/pkg/curated"
	"github.com/illmade-knight/go-destinations/pkg/types"
	"github.com/spf13/cobra"
)

func (c *cli) citiesCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "cities <country-name> <country-code>",
		Short: "List the most populous cities of a country",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			records := c.app.service.CitiesByCountry(cmd.Context(), args[0], strings.ToUpper(args[1]), limit)
			return printJSON(cmd, records)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of cities")
	return cmd
}

func (c *cli) nearbyCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "nearby <city>",
		Short: "List populous cities near a city",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, c.app.service.NearbyCities(cmd.Context(), strings.Join(args, " "), limit))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "maximum number of cities")
	return cmd
}

func (c *cli) placesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "places <city>",
		Short: "List attractions in a city",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, c.app.service.PlacesInCity(cmd.Context(), strings.Join(args, " ")))
		},
	}
}

func (c *cli) searchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search countries and cities",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, c.app.service.Search(cmd.Context(), strings.Join(args, " ")))
		},
	}
}

func (c *cli) countryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "country <name>",
		Short: "Show one country",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			country, err := c.app.service.Country(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printJSON(cmd, country)
		},
	}
}

func (c *cli) countriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List every country",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd, c.app.service.AllCountries(cmd.Context()))
		},
	}
}

func (c *cli) coordsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "coords <query>",
		Short: "Geocode a place name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			coords, ok := c.app.service.CityCoordinates(cmd.Context(), query)
			if !ok {
				return fmt.Errorf("no coordinates found for %q", query)
			}
			return printJSON(cmd, coords)
		},
	}
}

type imageResult struct {
	Query       string   `json:"query"`
	URLs        []string `json:"urls"`
	Placeholder bool     `json:"placeholder"`
}

func (c *cli) imageCommand() *cobra.Command {
	var (
		count       int
		orientation string
	)
	cmd := &cobra.Command{
		Use:   "image <query>",
		Short: "Resolve photos for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			var urls []string
			if count > 1 {
				urls = c.app.images.ResolveMany(cmd.Context(), query, count)
			} else if u, ok := c.app.images.Resolve(cmd.Context(), query, orientation); ok {
				urls = []string{u}
			}
			if len(urls) == 0 {
				return printJSON(cmd, imageResult{Query: query, URLs: []string{c.app.images.Placeholder(query)}, Placeholder: true})
			}
			return printJSON(cmd, imageResult{Query: query, URLs: urls})
		},
	}
	cmd.Flags().IntVar(&count, "count", 1, "number of photos")
	cmd.Flags().StringVar(&orientation, "orientation", "landscape", "landscape, portrait or squarish")
	return cmd
}

func (c *cli) heroCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hero <city>",
		Short: "Resolve the hero image for a city page",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, map[string]string{"image": c.app.service.CityImage(cmd.Context(), strings.Join(args, " "))})
		},
	}
}

func (c *cli) profileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profile <city>",
		Short: "Show the curated profile of a city",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			city := strings.Join(args, " ")
			profile, ok := curated.CityProfile(city)
			if !ok {
				return fmt.Errorf("no curated profile for %q", city)
			}
			return printJSON(cmd, profile)
		},
	}
}

func (c *cli) wishlistCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Manage saved destinations",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved destinations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd, c.app.wishlist.List(cmd.Context()))
		},
	}

	var image string
	add := &cobra.Command{
		Use:   "add <type> <id> <name>",
		Short: "Save a destination",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			item := types.WishlistItem{Type: args[0], ID: args[1], Name: strings.Join(args[2:], " "), Image: image}
			if err := c.app.wishlist.Add(cmd.Context(), item); err != nil {
				return err
			}
			return printJSON(cmd, c.app.wishlist.List(cmd.Context()))
		},
	}
	add.Flags().StringVar(&image, "image", "", "image URL to store with the item")

	remove := &cobra.Command{
		Use:   "remove <type> <id>",
		Short: "Forget a destination",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.wishlist.Remove(cmd.Context(), args[1], args[0]); err != nil {
				return err
			}
			return printJSON(cmd, c.app.wishlist.List(cmd.Context()))
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle <type> <id> <name>",
		Short: "Save a destination, or forget it if already saved",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			saved, err := c.app.wishlist.Toggle(cmd.Context(), types.WishlistItem{Type: args[0], ID: args[1], Name: strings.Join(args[2:], " ")})
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]bool{"saved": saved})
		},
	}

	cmd.AddCommand(list, add, remove, toggle)
	return cmd
}

func (c *cli) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage cached entries",
	}

	var (
		cities, nearby, places string
		limit                  int
		countries              bool
	)
	invalidate := &cobra.Command{
		Use:   "invalidate [key...]",
		Short: "Delete cached entries by raw key or by resource",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := append([]string(nil), args...)
			if cities != "" {
				keys = append(keys, aggregator.CitiesKey(strings.ToUpper(cities), limitOr(limit, 10)))
			}
			if nearby != "" {
				keys = append(keys, aggregator.NearbyKey(nearby, limitOr(limit, 5)))
			}
			if places != "" {
				keys = append(keys, aggregator.PlacesKey(places))
			}
			if countries {
				keys = append(keys, aggregator.AllCountriesKey)
			}
			if len(keys) == 0 {
				return fmt.Errorf("nothing to invalidate")
			}
			if err := c.app.service.Invalidate(cmd.Context(), keys...); err != nil {
				return err
			}
			return printJSON(cmd, map[string][]string{"invalidated": keys})
		},
	}
	invalidate.Flags().StringVar(&cities, "cities", "", "country code whose city listing to drop")
	invalidate.Flags().StringVar(&nearby, "nearby", "", "city whose nearby listing to drop")
	invalidate.Flags().StringVar(&places, "places", "", "city whose attraction listing to drop")
	invalidate.Flags().IntVar(&limit, "limit", 0, "listing limit used with --cities or --nearby")
	invalidate.Flags().BoolVar(&countries, "countries", false, "drop the country listing")

	cmd.AddCommand(invalidate)
	return cmd
}

func limitOr(limit, fallback int) int {
	if limit > 0 {
		return limit
	}
	return fallback
}
