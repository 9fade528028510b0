package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/mediguard/internal/client/models"
)

func (a *App) Reminders(ctx context.Context) error {
	list, err := a.api.ListMedicationReminders(ctx)
	if err != nil {
		a.report(ctx, "Could not load reminders", err)
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No medication reminders yet. Use 'addreminder' to create one.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MEDICATION\tDOSE\tTIME\tSCHEDULE")
	for _, r := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.MedicationName, r.Dose, r.Time, r.Schedule)
	}
	return tw.Flush()
}

func (a *App) AddReminder(ctx context.Context) error {
	var r models.NewMedicationReminder
	var err error

	if r.MedicationName, err = getSimpleText(a.reader, "Medication name", a.out); err != nil {
		return err
	}
	if r.Dose, err = getSimpleText(a.reader, "Dose (e.g. 100mg)", a.out); err != nil {
		return err
	}
	if r.Time, err = getSimpleText(a.reader, "Time (HH:MM)", a.out); err != nil {
		return err
	}
	repeat, err := getSimpleText(a.reader, "Repeat every N days (0 for once)", a.out)
	if err != nil {
		return err
	}
	if repeat != "" {
		if r.RepeatInterval, err = strconv.Atoi(repeat); err != nil {
			fmt.Fprintln(a.out, "Repeat interval must be a number.")
			return err
		}
	}
	if r.Date, err = getSimpleText(a.reader, "Start date (YYYY-MM-DD, optional)", a.out); err != nil {
		return err
	}

	created, err := a.api.CreateMedicationReminder(ctx, r)
	if err != nil {
		a.report(ctx, "Could not create reminder", err)
		return err
	}

	fmt.Fprintf(a.out, "Reminder for %s created (%s).\n", created.MedicationName, created.Schedule)
	return nil
}

func (a *App) Symptoms(ctx context.Context) error {
	list, err := a.api.ListSymptomChecks(ctx)
	if err != nil {
		a.report(ctx, "Could not load symptom checks", err)
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No symptom checks yet. Use 'check' to start one.")
		return nil
	}
	for _, c := range list {
		printSymptomCheck(a.out, c)
	}
	return nil
}

func (a *App) Check(ctx context.Context) error {
	message, err := GetMultiline(a.reader, "Describe your symptoms", a.out)
	if err != nil {
		return err
	}

	c, err := a.api.CheckSymptoms(ctx, message)
	if err != nil {
		a.report(ctx, "Symptom check failed", err)
		return err
	}
	printSymptomCheck(a.out, *c)
	return nil
}

func printSymptomCheck(w io.Writer, c models.SymptomCheck) {
	if !c.CreatedAt.IsZero() {
		fmt.Fprintf(w, "[%s] ", c.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(w, "You: %s\n", c.Message)
	fmt.Fprintf(w, "MediGuard: %s\n", c.Response)
}
