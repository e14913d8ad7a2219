package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"residentbook-backend-go/internal/listview"
	"residentbook-backend-go/internal/models"
)

// --- Session ---

func (c *cli) signupCmd() *cobra.Command {
	var req models.SignupRequest
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Signup(cmd.Context(), req); err != nil {
				return err
			}
			s := c.state().Session
			fmt.Fprintf(cmd.OutOrStdout(), "Signed up and logged in as %s (%s)\n", s.Email, s.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "password, at least 6 characters")
	cmd.Flags().StringVar(&req.Role, "role", models.RoleResident, "Admin or Resident")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			s := c.state().Session
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", s.Email, s.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := c.state().Session
			if s == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", s.UserID, s.Email, s.Role)
			return nil
		},
	}
}

// --- Services ---

func (c *cli) servicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "List and manage bookable services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.LoadServices(cmd.Context()); err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
			for _, svc := range c.state().Services {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", svc.ID, svc.Name, svc.Description)
			}
			return tw.Flush()
		},
	}

	var add models.CreateServiceRequest
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a service (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.AddService(cmd.Context(), add); err != nil {
				return err
			}
			svcs := c.state().Services
			fmt.Fprintf(cmd.OutOrStdout(), "Created service %s\n", svcs[len(svcs)-1].ID)
			return nil
		},
	}
	addCmd.Flags().StringVar(&add.Name, "name", "", "service name")
	addCmd.Flags().StringVar(&add.Description, "description", "", "short description")
	_ = addCmd.MarkFlagRequired("name")

	deleteCmd := &cobra.Command{
		Use:   "delete SERVICE_ID",
		Short: "Delete a service (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.DeleteService(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted service %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(addCmd, deleteCmd)
	return cmd
}

// --- Slots ---

func (c *cli) slotsCmd() *cobra.Command {
	var day models.AvailabilityQuery
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Show the free slots of a service day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.LoadAvailable(cmd.Context(), day); err != nil {
				return err
			}
			slots := c.state().Slots
			if len(slots) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No slots available")
				return nil
			}
			for _, slot := range slots {
				fmt.Fprintln(cmd.OutOrStdout(), slot.Slot)
			}
			return nil
		},
	}
	addDayFlags(cmd, &day)

	var (
		listDay models.AvailabilityQuery
		view    listview.View
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every slot of a service day (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.app.LoadSlots(cmd.Context(), listDay, view)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tDATE\tSLOT\tBOOKED")
			for _, slot := range c.state().Slots {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", slot.ID, slot.Date, slot.Slot, slot.IsBooked)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			pageFooter(cmd.OutOrStdout(), res.Page, res.TotalPages, res.Total)
			return nil
		},
	}
	addDayFlags(listCmd, &listDay)
	addViewFlags(listCmd, &view)

	var create models.CreateSlotRequest
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a slot by label or by start and end time (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.CreateSlot(cmd.Context(), create); err != nil {
				return err
			}
			slots := c.state().Slots
			slot := slots[len(slots)-1]
			fmt.Fprintf(cmd.OutOrStdout(), "Created slot %s (%s %s)\n", slot.ID, slot.Date, slot.Slot)
			return nil
		},
	}
	addCmd.Flags().StringVar(&create.ServiceID, "service", "", "service ID")
	addCmd.Flags().StringVar(&create.Date, "date", "", "date, YYYY-MM-DD")
	addCmd.Flags().StringVar(&create.Slot, "slot", "", `slot label, e.g. "9:00 AM - 10:00 AM"`)
	addCmd.Flags().StringVar(&create.StartTime, "start", "", "start time, HH:MM")
	addCmd.Flags().StringVar(&create.EndTime, "end", "", "end time, HH:MM")
	addCmd.MarkFlagsRequiredTogether("start", "end")
	addCmd.MarkFlagsMutuallyExclusive("slot", "start")
	_ = addCmd.MarkFlagRequired("service")
	_ = addCmd.MarkFlagRequired("date")

	var gen models.GenerateSlotsRequest
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Create every default slot of a day (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.app.GenerateSlots(cmd.Context(), gen)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d slots, skipped %d existing\n", len(res.Created), len(res.Skipped))
			return nil
		},
	}
	generateCmd.Flags().StringVar(&gen.ServiceID, "service", "", "service ID")
	generateCmd.Flags().StringVar(&gen.Date, "date", "", "date, YYYY-MM-DD")
	_ = generateCmd.MarkFlagRequired("service")
	_ = generateCmd.MarkFlagRequired("date")

	deleteCmd := &cobra.Command{
		Use:   "delete SLOT_ID",
		Short: "Delete a slot (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.DeleteSlot(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted slot %s\n", args[0])
			return nil
		},
	}

	candidatesCmd := &cobra.Command{
		Use:   "candidates",
		Short: "Print the default slot labels of a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			labels, err := c.app.Candidates(cmd.Context())
			if err != nil {
				return err
			}
			for _, label := range labels {
				fmt.Fprintln(cmd.OutOrStdout(), label)
			}
			return nil
		},
	}

	cmd.AddCommand(listCmd, addCmd, generateCmd, deleteCmd, candidatesCmd)
	return cmd
}

func addDayFlags(cmd *cobra.Command, day *models.AvailabilityQuery) {
	cmd.Flags().StringVar(&day.ServiceID, "service", "", "service ID")
	cmd.Flags().StringVar(&day.Date, "date", "", "date, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("service")
	_ = cmd.MarkFlagRequired("date")
}

// --- Bookings ---

func (c *cli) bookCmd() *cobra.Command {
	var req models.CreateBookingRequest
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a free slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Email == "" {
				if s := c.state().Session; s != nil {
					req.Email = s.Email
				}
			}
			if err := c.app.Book(cmd.Context(), req); err != nil {
				return err
			}
			printBooking(cmd, c.state().Booking)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.ServiceID, "service", "", "service ID")
	cmd.Flags().StringVar(&req.Date, "date", "", "date, YYYY-MM-DD")
	cmd.Flags().StringVar(&req.Slot, "slot", "", `slot label, e.g. "9:00 AM - 10:00 AM"`)
	cmd.Flags().StringVar(&req.CustomerName, "name", "", "name on the booking")
	cmd.Flags().StringVar(&req.Email, "email", "", "contact email (default: account email)")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "10-digit phone number")
	for _, name := range []string{"service", "date", "slot", "name", "phone"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (c *cli) bookingsCmd() *cobra.Command {
	var (
		view listview.View
		all  bool
	)
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "List bookings: your own, or everyone's with --all (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.app.LoadBookings(cmd.Context(), view, all)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tSERVICE\tDATE\tSLOT\tNAME\tEMAIL\tPHONE")
			for _, b := range c.state().Bookings {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", b.ID, b.ServiceName, b.Date, b.Slot, b.CustomerName, b.Email, b.Phone)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			pageFooter(cmd.OutOrStdout(), res.Page, res.TotalPages, res.Total)
			return nil
		},
	}
	addViewFlags(cmd, &view)
	cmd.Flags().BoolVar(&all, "all", false, "list every resident's bookings (admin)")

	showCmd := &cobra.Command{
		Use:   "show BOOKING_ID",
		Short: "Show one booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.LoadBooking(cmd.Context(), args[0]); err != nil {
				return err
			}
			printBooking(cmd, c.state().Booking)
			return nil
		},
	}

	var yes bool
	cancelCmd := &cobra.Command{
		Use:   "cancel BOOKING_ID",
		Short: "Cancel a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if err := confirm(cmd, fmt.Sprintf("Cancel booking %s?", args[0])); err != nil {
					if errors.Is(err, errAborted) {
						fmt.Fprintln(cmd.OutOrStdout(), "Nothing cancelled")
						return nil
					}
					return err
				}
			}
			if err := c.app.CancelBooking(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cancelled booking %s\n", args[0])
			return nil
		},
	}
	cancelCmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(showCmd, cancelCmd)
	return cmd
}

func printBooking(cmd *cobra.Command, b *models.Booking) {
	if b == nil {
		return
	}
	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintf(tw, "Booking\t%s\n", b.ID)
	fmt.Fprintf(tw, "Service\t%s\n", b.ServiceName)
	fmt.Fprintf(tw, "Date\t%s\n", b.Date)
	fmt.Fprintf(tw, "Slot\t%s\n", b.Slot)
	fmt.Fprintf(tw, "Name\t%s\n", b.CustomerName)
	fmt.Fprintf(tw, "Email\t%s\n", b.Email)
	fmt.Fprintf(tw, "Phone\t%s\n", b.Phone)
	_ = tw.Flush()
}
