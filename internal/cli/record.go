package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/keepwell-care/keepwell/internal/daemon"
	"github.com/keepwell-care/keepwell/internal/domain"
)

func init() {
	recordCmd.Flags().StringVar(&recordUser, "user", "", "User ID")
	recordCmd.Flags().StringVar(&recordDate, "date", "", "Score date YYYY-MM-DD (default today)")
	recordCmd.Flags().IntVar(&recordDiet, "diet", 0, "Diet score 1-10")
	recordCmd.Flags().IntVar(&recordExercise, "exercise", 0, "Exercise score 1-10")
	recordCmd.Flags().IntVar(&recordMedication, "medication", 0, "Medication adherence score 1-10")
	recordCmd.MarkFlagRequired("user")
	recordCmd.MarkFlagRequired("diet")
	recordCmd.MarkFlagRequired("exercise")
	recordCmd.MarkFlagRequired("medication")
	rootCmd.AddCommand(recordCmd)
}

var (
	recordUser       string
	recordDate       string
	recordDiet       int
	recordExercise   int
	recordMedication int
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a day's wellbeing scores",
	Long: `Record one day's self-reported scores. Submitting the same date
again replaces the earlier entry.`,
	RunE: runRecord,
}

func runRecord(cmd *cobra.Command, args []string) error {
	date := time.Now().UTC().Truncate(24 * time.Hour)
	if recordDate != "" {
		var err error
		date, err = time.ParseInLocation("2006-01-02", recordDate, time.UTC)
		if err != nil {
			return fmt.Errorf("parse date: %w", err)
		}
	}

	entry := domain.DailyScoreEntry{
		UserID:          recordUser,
		Date:            date,
		DietScore:       recordDiet,
		ExerciseScore:   recordExercise,
		MedicationScore: recordMedication,
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	if entry.Date.After(time.Now().UTC()) {
		return domain.ErrFutureDate
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.DB.UpsertDailyScore(context.Background(), entry); err != nil {
		return err
	}
	d.Milestones.Invalidate(entry.UserID)

	fmt.Printf("Recorded %s for %s (diet %d, exercise %d, medication %d)\n",
		date.Format("2006-01-02"), entry.UserID,
		entry.DietScore, entry.ExerciseScore, entry.MedicationScore)
	return nil
}
