package main

import (
	"fmt"
	"strconv"

	"carbids/internal/pages"

	"github.com/spf13/cobra"
)

var (
	filterDescription string
	filterBidCount    string
	filterThreshold   int
	filterMode        string
)

// garageCmd — обзор гаража: принятые работы и собственные открытые ставки
var garageCmd = &cobra.Command{
	Use:   "garage",
	Short: "Show your accepted jobs and open bids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := pages.NewGarage(newClient(), sessionProvider(), lg)
		if err != nil {
			return explainSession(err)
		}
		if err := page.Load(cmd.Context()); err != nil {
			return err
		}

		fmt.Println("Accepted jobs:")
		for _, job := range page.AcceptedJobs() {
			accepted, _ := job.AcceptedBid()
			fmt.Printf("  job #%d %s for %d", job.ID, job.Job.Description, accepted.Amount)
			if contact, ok := page.Contact(job); ok {
				fmt.Printf(" — %s %s, owner %s, tel %s",
					job.Car.Make, job.Car.Model, contact.Username, contact.Phonenumber)
			}
			fmt.Println()
		}

		fmt.Println("Open bids:")
		for _, own := range page.OpenBids() {
			fmt.Printf("  bid #%d: %d on job #%d %s\n",
				own.Bid.ID, own.Bid.Amount, own.Job.ID, own.Job.Job.Description)
		}
		return nil
	},
}

// browseCmd — витрина открытых работ с фильтром
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse open jobs without an accepted bid",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if filterMode != "" && filterMode != pages.ModeHighest && filterMode != pages.ModeLowest {
			return fmt.Errorf("invalid --mode %q, want %q or %q", filterMode, pages.ModeHighest, pages.ModeLowest)
		}
		browser, err := pages.NewBrowser(newClient(), sessionProvider(), lg)
		if err != nil {
			return explainSession(err)
		}
		if err := browser.Load(cmd.Context()); err != nil {
			return err
		}
		browser.Filter = pages.Filter{
			Description: filterDescription,
			BidCount:    filterBidCount,
			Threshold:   filterThreshold,
			Mode:        filterMode,
		}

		for _, job := range browser.Filtered() {
			fmt.Printf("job #%d %s, last service %s, %d bid(s)",
				job.ID, job.Job.Description, job.LastService.Format("2006-01-02"), len(job.Bids))
			if job.Car != nil {
				fmt.Printf(" — %s %s (%d)", job.Car.Make, job.Car.Model, job.Car.Year)
			}
			if own, ok := browser.OwnBid(job); ok {
				fmt.Printf(" [your bid #%d: %d]", own.ID, own.Amount)
			}
			fmt.Println()
		}
		return nil
	},
}

var bidCmd = &cobra.Command{
	Use:   "bid",
	Short: "Manage your bids",
}

var bidSubmitCmd = &cobra.Command{
	Use:   "submit <userJobId> <amount>",
	Short: "Place a bid on an open job",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userJobID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid userJobId %q", args[0])
		}
		amount, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[1])
		}
		browser, err := pages.NewBrowser(newClient(), sessionProvider(), lg)
		if err != nil {
			return explainSession(err)
		}
		if err := browser.Load(cmd.Context()); err != nil {
			return err
		}
		browser.SubmitBid(cmd.Context(), userJobID, amount)
		return nil
	},
}

var bidEditCmd = &cobra.Command{
	Use:   "edit <userJobId> <bidId> <amount>",
	Short: "Change the amount of your bid",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		userJobID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid userJobId %q", args[0])
		}
		bidID, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid bidId %q", args[1])
		}
		amount, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[2])
		}
		page, err := pages.NewGarage(newClient(), sessionProvider(), lg)
		if err != nil {
			return explainSession(err)
		}
		if err := page.Load(cmd.Context()); err != nil {
			return err
		}
		page.EditBid(cmd.Context(), userJobID, bidID, amount)
		return nil
	},
}

var bidRmCmd = &cobra.Command{
	Use:   "rm <bidId>",
	Short: "Withdraw an open bid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bidID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid bidId %q", args[0])
		}
		page, err := pages.NewGarage(newClient(), sessionProvider(), lg)
		if err != nil {
			return explainSession(err)
		}
		if err := page.Load(cmd.Context()); err != nil {
			return err
		}
		page.RemoveBid(cmd.Context(), bidID)
		return nil
	},
}

func init() {
	browseCmd.Flags().StringVar(&filterDescription, "description", "", "job description contains, case-insensitive")
	browseCmd.Flags().StringVar(&filterBidCount, "bids", "", "exact number of bids")
	browseCmd.Flags().IntVar(&filterThreshold, "threshold", 0, "bid amount threshold")
	browseCmd.Flags().StringVar(&filterMode, "mode", "", "threshold mode: highest or lowest")

	bidCmd.AddCommand(bidSubmitCmd, bidEditCmd, bidRmCmd)
	rootCmd.AddCommand(garageCmd, browseCmd, bidCmd)
}
