package main

import (
	"fmt"
	"strconv"
	"time"

	"carbids/internal/pages"
	"carbids/models"

	"github.com/spf13/cobra"
)

var (
	carMake  string
	carModel string
	carColor string
	carPlate string
	carYear  int

	jobCarID    int
	jobTypeID   int
	lastService string
)

// dashboardCmd показывает машины владельца; с аргументом — одну машину
// с работами и ставками.
var dashboardCmd = &cobra.Command{
	Use:   "dashboard [carId]",
	Short: "List your cars, or show one car with its jobs and bids",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := pages.NewOwner(newClient(), sessionProvider(), lg)
		if err != nil {
			return explainSession(err)
		}
		if err := owner.Load(cmd.Context()); err != nil {
			return err
		}

		if len(args) == 0 {
			if len(owner.Cars) == 0 {
				fmt.Println("No cars yet, add one with 'carbids car add'")
				return nil
			}
			for _, car := range owner.Cars {
				fmt.Printf("#%d %s %s (%d, %s) — %d job(s)\n",
					car.ID, car.Make, car.Model, car.Year, car.Licenseplate, len(car.UserJobs))
			}
			return nil
		}

		carID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid carId %q", args[0])
		}
		if !owner.SelectCar(carID) {
			return fmt.Errorf("car %d not found", carID)
		}
		printCar(owner)
		return nil
	},
}

func printCar(owner *pages.Owner) {
	car := owner.Selected
	fmt.Printf("#%d %s %s, %s, %d, plate %s\n",
		car.ID, car.Make, car.Model, car.Color, car.Year, car.Licenseplate)
	for _, job := range car.UserJobs {
		fmt.Printf("  job #%d %s, last service %s, %d bid(s)\n",
			job.ID, job.Job.Description, job.LastService.Format("2006-01-02"), len(job.Bids))
		for _, bid := range job.Bids {
			marker := " "
			if owner.AcceptedBids[job.ID] == bid.ID {
				marker = "*"
			}
			name := ""
			if bid.Garage != nil {
				name = bid.Garage.Name
			}
			fmt.Printf("   %s bid #%d: %d by %s\n", marker, bid.ID, bid.Amount, name)
		}
	}
}

var carCmd = &cobra.Command{
	Use:   "car",
	Short: "Manage your cars",
}

var carAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a car",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := pages.NewOwner(newClient(), sessionProvider(), lg)
		if err != nil {
			return explainSession(err)
		}
		owner.AddCar(cmd.Context(), models.NewCar{
			Make:         carMake,
			Model:        carModel,
			Color:        carColor,
			Licenseplate: carPlate,
			Year:         carYear,
		})
		fmt.Printf("You now have %d car(s)\n", len(owner.Cars))
		return nil
	},
}

var carRmCmd = &cobra.Command{
	Use:   "rm <carId>",
	Short: "Delete a car and all its jobs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		carID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid carId %q", args[0])
		}
		owner, err := pages.NewOwner(newClient(), sessionProvider(), lg)
		if err != nil {
			return explainSession(err)
		}
		if err := owner.Load(cmd.Context()); err != nil {
			return err
		}
		owner.RemoveCar(cmd.Context(), carID)
		fmt.Printf("You now have %d car(s)\n", len(owner.Cars))
		return nil
	},
}

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Manage maintenance jobs on your cars",
}

var jobAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Put a maintenance job on a car",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		when, err := time.Parse("2006-01-02", lastService)
		if err != nil {
			return fmt.Errorf("invalid --last-service, want YYYY-MM-DD: %w", err)
		}
		owner, err := pages.NewOwner(newClient(), sessionProvider(), lg)
		if err != nil {
			return explainSession(err)
		}
		if err := owner.Load(cmd.Context()); err != nil {
			return err
		}
		if !owner.SelectCar(jobCarID) {
			return fmt.Errorf("car %d not found", jobCarID)
		}
		owner.AddJob(cmd.Context(), models.AddJob{LastService: when, JobID: jobTypeID})
		printCar(owner)
		return nil
	},
}

var jobRmCmd = &cobra.Command{
	Use:   "rm <userJobId>",
	Short: "Remove a job from a car",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userJobID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid userJobId %q", args[0])
		}
		owner, err := pages.NewOwner(newClient(), sessionProvider(), lg)
		if err != nil {
			return explainSession(err)
		}
		if err := owner.Load(cmd.Context()); err != nil {
			return err
		}
		if !owner.SelectCar(jobCarID) {
			return fmt.Errorf("car %d not found", jobCarID)
		}
		owner.RemoveJob(cmd.Context(), userJobID)
		printCar(owner)
		return nil
	},
}

// jobTypesCmd показывает каталог типов работ
var jobTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the maintenance job catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := pages.NewOwner(newClient(), sessionProvider(), lg)
		if err != nil {
			return explainSession(err)
		}
		jobs, err := owner.JobCatalog(cmd.Context())
		if err != nil {
			return err
		}
		for _, job := range jobs {
			fmt.Printf("#%d %s (every %d months)\n", job.ID, job.Description, job.Interval)
		}
		return nil
	},
}

// acceptCmd переключает принятие ставки: повтор по принятой снимает ее
var acceptCmd = &cobra.Command{
	Use:   "accept <carId> <userJobId> <bidId>",
	Short: "Accept a bid, or un-accept it if already accepted",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		carID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid carId %q", args[0])
		}
		userJobID, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid userJobId %q", args[1])
		}
		bidID, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid bidId %q", args[2])
		}

		owner, err := pages.NewOwner(newClient(), sessionProvider(), lg)
		if err != nil {
			return explainSession(err)
		}
		if err := owner.Load(cmd.Context()); err != nil {
			return err
		}
		if !owner.SelectCar(carID) {
			return fmt.Errorf("car %d not found", carID)
		}
		owner.AcceptBid(cmd.Context(), userJobID, bidID)
		printCar(owner)
		return nil
	},
}

func init() {
	carAddCmd.Flags().StringVar(&carMake, "make", "", "manufacturer")
	carAddCmd.Flags().StringVar(&carModel, "model", "", "model")
	carAddCmd.Flags().StringVar(&carColor, "color", "", "color")
	carAddCmd.Flags().StringVar(&carPlate, "plate", "", "license plate")
	carAddCmd.Flags().IntVar(&carYear, "year", 0, "production year")
	carAddCmd.MarkFlagRequired("make")
	carAddCmd.MarkFlagRequired("model")
	carAddCmd.MarkFlagRequired("color")
	carAddCmd.MarkFlagRequired("plate")
	carAddCmd.MarkFlagRequired("year")
	carCmd.AddCommand(carAddCmd, carRmCmd)

	jobAddCmd.Flags().IntVar(&jobCarID, "car", 0, "car id")
	jobAddCmd.Flags().IntVar(&jobTypeID, "type", 0, "job type id, see 'carbids job types'")
	jobAddCmd.Flags().StringVar(&lastService, "last-service", "", "date of last service, YYYY-MM-DD")
	jobAddCmd.MarkFlagRequired("car")
	jobAddCmd.MarkFlagRequired("type")
	jobAddCmd.MarkFlagRequired("last-service")
	jobRmCmd.Flags().IntVar(&jobCarID, "car", 0, "car id")
	jobRmCmd.MarkFlagRequired("car")
	jobCmd.AddCommand(jobAddCmd, jobRmCmd, jobTypesCmd)

	rootCmd.AddCommand(dashboardCmd, carCmd, jobCmd, acceptCmd)
}
