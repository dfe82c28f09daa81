package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"carmarket/internal/models"
	"carmarket/internal/repository"
	"carmarket/internal/service"

	"github.com/spf13/cobra"
)

func newCarsCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cars",
		Short: "Search, inspect and compare listings",
	}
	cmd.AddCommand(
		newCarsSearchCommand(env),
		newCarsShowCommand(env),
		newCarsRecommendCommand(env),
		newCarsCompareCommand(env),
		newCarsSellCommand(env),
	)
	return cmd
}

func newCarsSearchCommand(env *Env) *cobra.Command {
	var (
		f                  repository.ListingFilter
		fuel, trans        string
		minPrice, maxPrice int
		minYear, maxYear   int
	)
	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "List cars matching every given criterion",
		RunE: func(cmd *cobra.Command, args []string) error {
			f.Search = joinArgs(args)
			f.FuelType = models.FuelType(fuel)
			f.Transmission = models.Transmission(trans)
			flags := cmd.Flags()
			if flags.Changed("min-price") {
				f.MinPrice = &minPrice
			}
			if flags.Changed("max-price") {
				f.MaxPrice = &maxPrice
			}
			if flags.Changed("min-year") {
				f.MinYear = &minYear
			}
			if flags.Changed("max-year") {
				f.MaxYear = &maxYear
			}

			cars, err := env.App.Listing.Search(cmd.Context(), f)
			if err != nil {
				return describe(err)
			}
			printCars(cmd.OutOrStdout(), cars)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Brand, "brand", "", "exact brand")
	cmd.Flags().StringVar(&fuel, "fuel", "", "gasoline, diesel, hybrid or electric")
	cmd.Flags().StringVar(&trans, "transmission", "", "manual or automatic")
	cmd.Flags().IntVar(&minPrice, "min-price", 0, "lowest price in 만원")
	cmd.Flags().IntVar(&maxPrice, "max-price", 0, "highest price in 만원")
	cmd.Flags().IntVar(&minYear, "min-year", 0, "oldest model year")
	cmd.Flags().IntVar(&maxYear, "max-year", 0, "newest model year")
	return cmd
}

func newCarsShowCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <car-id>",
		Short: "Show one listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			car, err := env.App.Listing.GetListing(cmd.Context(), args[0])
			if err != nil {
				return describe(err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s\n", car.Title)
			fmt.Fprintf(w, "  %s %s, %d년, %dkm, %s/%s\n", car.Brand, car.Model, car.Year, car.Mileage,
				car.FuelType.Label(), car.Transmission.Label())
			fmt.Fprintf(w, "  %d만원 · %s · %s\n", car.Price, car.Color, car.Location)
			fmt.Fprintf(w, "  판매자 %s %s\n", car.SellerName, car.SellerPhone)
			if car.Description != "" {
				fmt.Fprintf(w, "  %s\n", car.Description)
			}
			return nil
		},
	}
}

func newCarsRecommendCommand(env *Env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recommend [all|budget|luxury|electric|recent]",
		Short: "Show recommended listings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := service.RecommendAll
			if len(args) == 1 {
				category = args[0]
			}
			cars, err := env.App.Listing.Recommend(cmd.Context(), category, limit)
			if err != nil {
				return describe(err)
			}
			printCars(cmd.OutOrStdout(), cars)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", service.DefaultRecommendLimit, "maximum number of cars")
	return cmd
}

func newCarsCompareCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <car-id>...",
		Short: "Compare up to three listings side by side",
		Args:  cobra.RangeArgs(1, service.MaxCompare),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmp, err := env.App.Listing.Compare(cmd.Context(), args)
			if err != nil {
				return describe(err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			header := []string{""}
			for _, c := range cmp.Cars {
				header = append(header, c.Title)
			}
			fmt.Fprintln(tw, strings.Join(header, "\t"))
			for _, row := range cmp.Rows {
				cells := []string{row.Label}
				for i, v := range row.Values {
					if i == row.Best {
						v += " *"
					}
					cells = append(cells, v)
				}
				fmt.Fprintln(tw, strings.Join(cells, "\t"))
			}
			return tw.Flush()
		},
	}
}

func newCarsSellCommand(env *Env) *cobra.Command {
	var (
		in          service.CreateListingInput
		fuel, trans string
	)
	cmd := &cobra.Command{
		Use:   "sell",
		Short: "Publish a listing as the signed-in member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			seller, err := env.identity()
			if err != nil {
				return err
			}
			in.FuelType = models.FuelType(fuel)
			in.Transmission = models.Transmission(trans)
			car, err := env.App.Listing.CreateListing(cmd.Context(), seller, in)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listed %s (%s)\n", car.Title, car.ID)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&in.Title, "title", "", "listing title")
	fl.StringVar(&in.Brand, "brand", "", "brand")
	fl.StringVar(&in.Model, "model", "", "model")
	fl.IntVar(&in.Year, "year", 0, "model year")
	fl.IntVar(&in.Price, "price", 0, "price in 만원")
	fl.IntVar(&in.Mileage, "mileage", 0, "mileage in km")
	fl.StringVar(&fuel, "fuel", string(models.FuelGasoline), "gasoline, diesel, hybrid or electric")
	fl.StringVar(&trans, "transmission", string(models.TransmissionAutomatic), "manual or automatic")
	fl.StringVar(&in.Color, "color", "", "exterior color")
	fl.StringVar(&in.Location, "location", "", "where the car can be seen")
	fl.StringVar(&in.Description, "description", "", "free text")
	fl.StringSliceVar(&in.Images, "image", nil, "image URL, repeatable")
	return cmd
}

func printCars(w io.Writer, cars []models.Car) {
	if len(cars) == 0 {
		fmt.Fprintln(w, "No cars found")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tYEAR\tPRICE\tMILEAGE\tLOCATION")
	for _, c := range cars {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d만원\t%dkm\t%s\n", c.ID, c.Title, c.Year, c.Price, c.Mileage, c.Location)
	}
	_ = tw.Flush()
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
