package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/tutor/internal/lessonplan"
	"github.com/abhisek/tutor/internal/lessons"
)

var lessonCmd = &cobra.Command{
	Use:   "lesson",
	Short: "Create lessons and record progress through them",
}

var lessonCreateCmd = &cobra.Command{
	Use:   "create <topic>",
	Short: "Create an empty lesson for a topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		difficulty, _ := cmd.Flags().GetString("difficulty")
		return withTracker(cmd, func(t *lessons.Tracker) error {
			return printJSON(cmd, t.CreateLesson(cmd.Context(), args[0], difficulty))
		})
	},
}

var lessonConceptCmd = &cobra.Command{
	Use:   "concept <lesson-id> <title>",
	Short: "Add a concept to a lesson",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		explanation, _ := cmd.Flags().GetString("explanation")
		examples, _ := cmd.Flags().GetStringArray("example")
		checks, _ := cmd.Flags().GetStringArray("check")
		return withTracker(cmd, func(t *lessons.Tracker) error {
			c := t.AddConcept(cmd.Context(), args[0], lessons.ConceptInput{
				Title:          args[1],
				Explanation:    explanation,
				Examples:       examples,
				CheckQuestions: checks,
			})
			return printResult(cmd, c, "lesson "+args[0])
		})
	},
}

var lessonCompleteConceptCmd = &cobra.Command{
	Use:   "complete-concept <lesson-id> <concept-id>",
	Short: "Mark a concept completed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		understood, _ := cmd.Flags().GetBool("understood")
		return withTracker(cmd, func(t *lessons.Tracker) error {
			t.CompleteConcept(cmd.Context(), args[0], args[1], understood)
			return printProgress(cmd, t, args[0])
		})
	},
}

var lessonExerciseCmd = &cobra.Command{
	Use:   "exercise <lesson-id> <question>",
	Short: "Add a practice exercise to a lesson",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, _ := cmd.Flags().GetString("type")
		options, _ := cmd.Flags().GetStringArray("option")
		answer, _ := cmd.Flags().GetString("answer")
		hints, _ := cmd.Flags().GetStringArray("hint")

		et, err := parseExerciseType(typ)
		if err != nil {
			return err
		}
		return withTracker(cmd, func(t *lessons.Tracker) error {
			e := t.AddExercise(cmd.Context(), args[0], lessons.ExerciseInput{
				Question:      args[1],
				Type:          et,
				Options:       options,
				CorrectAnswer: answer,
				Hints:         hints,
			})
			return printResult(cmd, e, "lesson "+args[0])
		})
	},
}

var lessonSubmitCmd = &cobra.Command{
	Use:   "submit <lesson-id> <exercise-id> <answer>",
	Short: "Submit an answer to a practice exercise",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(t *lessons.Tracker) error {
			res := t.SubmitExercise(cmd.Context(), args[0], args[1], args[2])
			return printResult(cmd, res, "exercise "+args[1])
		})
	},
}

var lessonQuizCmd = &cobra.Command{
	Use:   "quiz <lesson-id> <questions.json>",
	Short: "Set a lesson's quiz from a JSON array of questions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("read questions: %w", err)
		}
		var questions []lessons.QuizQuestionInput
		if err := json.Unmarshal(raw, &questions); err != nil {
			return fmt.Errorf("decode questions: %w", err)
		}
		return withTracker(cmd, func(t *lessons.Tracker) error {
			if t.GetLesson(args[0]) == nil {
				return fmt.Errorf("lesson %s not found", args[0])
			}
			t.CreateQuiz(cmd.Context(), args[0], questions)
			return printJSON(cmd, t.GetLesson(args[0]).Quiz)
		})
	},
}

var lessonSubmitQuizCmd = &cobra.Command{
	Use:   "submit-quiz <lesson-id> <answer>...",
	Short: "Submit quiz answers, one per question in order",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(t *lessons.Tracker) error {
			res, err := t.SubmitQuiz(cmd.Context(), args[0], args[1:])
			if err != nil {
				return err
			}
			return printResult(cmd, res, "lesson "+args[0])
		})
	},
}

var lessonIntroCmd = &cobra.Command{
	Use:   "intro <lesson-id>",
	Short: "Mark the introduction completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(t *lessons.Tracker) error {
			t.CompleteIntroduction(cmd.Context(), args[0])
			return printProgress(cmd, t, args[0])
		})
	},
}

var lessonFinishCmd = &cobra.Command{
	Use:   "finish <lesson-id>",
	Short: "Mark the summary completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		notes, _ := cmd.Flags().GetString("notes")
		return withTracker(cmd, func(t *lessons.Tracker) error {
			t.CompleteSummary(cmd.Context(), args[0], notes)
			return printProgress(cmd, t, args[0])
		})
	},
}

var lessonTimeCmd = &cobra.Command{
	Use:   "time <lesson-id> <section> <seconds>",
	Short: "Record time spent in a section",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		item, _ := cmd.Flags().GetString("item")
		secs, err := strconv.Atoi(args[2])
		if err != nil || secs <= 0 {
			return fmt.Errorf("invalid seconds %q: must be a positive integer", args[2])
		}
		section, err := parseSection(args[1])
		if err != nil {
			return err
		}
		return withTracker(cmd, func(t *lessons.Tracker) error {
			t.RecordTime(cmd.Context(), args[0], lessons.TimeEntry{
				Section: section,
				ItemID:  item,
				Seconds: secs,
			})
			return printProgress(cmd, t, args[0])
		})
	},
}

var lessonSummaryCmd = &cobra.Command{
	Use:   "summary <lesson-id>",
	Short: "Show a lesson summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(t *lessons.Tracker) error {
			return printResult(cmd, t.GetLessonSummary(args[0]), "lesson "+args[0])
		})
	},
}

var lessonExportCmd = &cobra.Command{
	Use:   "export <lesson-id>",
	Short: "Export a lesson with its summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(t *lessons.Tracker) error {
			return printResult(cmd, t.ExportLesson(args[0]), "lesson "+args[0])
		})
	},
}

var lessonImportCmd = &cobra.Command{
	Use:   "import <plan.json>",
	Short: "Create a lesson from a JSON lesson plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := lessonplan.ReadFile(args[0])
		if err != nil {
			return err
		}
		return withTracker(cmd, func(t *lessons.Tracker) error {
			l, err := lessonplan.Apply(cmd.Context(), t, plan)
			if err != nil {
				return err
			}
			return printJSON(cmd, l)
		})
	},
}

var lessonShowCmd = &cobra.Command{
	Use:   "show <lesson-id>",
	Short: "Show a lesson",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(t *lessons.Tracker) error {
			return printResult(cmd, t.GetLesson(args[0]), "lesson "+args[0])
		})
	},
}

var lessonListCmd = &cobra.Command{
	Use:   "list <topic>",
	Short: "List a topic's lessons",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(t *lessons.Tracker) error {
			return printJSON(cmd, t.ListLessons(args[0]))
		})
	},
}

type topicRow struct {
	Topic string `json:"topic"`
	*lessons.TopicProgress
}

var lessonTopicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Show progress for every topic",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(t *lessons.Tracker) error {
			rows := []topicRow{}
			for _, topic := range t.ListTopics() {
				rows = append(rows, topicRow{Topic: topic, TopicProgress: t.GetTopicProgress(topic)})
			}
			return printJSON(cmd, rows)
		})
	},
}

var lessonRecommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Show the topic with the lowest mastery",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(t *lessons.Tracker) error {
			return printJSON(cmd, map[string]string{"topic": t.GetRecommendedTopic()})
		})
	},
}

var lessonMasteryCmd = &cobra.Command{
	Use:   "mastery <topic> <level>",
	Short: "Set a topic's mastery level (0-100)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid level %q: %w", args[1], err)
		}
		return withTracker(cmd, func(t *lessons.Tracker) error {
			t.SetMasteryLevel(cmd.Context(), args[0], level)
			return printResult(cmd, t.GetTopicProgress(args[0]), "topic "+args[0])
		})
	},
}

func init() {
	lessonCreateCmd.Flags().String("difficulty", lessons.DefaultDifficulty, "Difficulty tag")

	lessonConceptCmd.Flags().String("explanation", "", "Concept explanation")
	lessonConceptCmd.Flags().StringArray("example", nil, "Example (repeatable)")
	lessonConceptCmd.Flags().StringArray("check", nil, "Check question (repeatable)")

	lessonCompleteConceptCmd.Flags().Bool("understood", true, "Whether the learner understood the concept")

	lessonExerciseCmd.Flags().String("type", string(lessons.ExerciseOpenEnded), "Exercise type: multiple-choice, open-ended, code or problem-solving")
	lessonExerciseCmd.Flags().StringArray("option", nil, "Answer option (repeatable)")
	lessonExerciseCmd.Flags().String("answer", "", "Correct answer")
	lessonExerciseCmd.Flags().StringArray("hint", nil, "Hint (repeatable)")

	lessonFinishCmd.Flags().String("notes", "", "Summary notes")

	lessonTimeCmd.Flags().String("item", "", "Concept or exercise ID")

	lessonCmd.AddCommand(
		lessonCreateCmd,
		lessonConceptCmd,
		lessonCompleteConceptCmd,
		lessonExerciseCmd,
		lessonSubmitCmd,
		lessonQuizCmd,
		lessonSubmitQuizCmd,
		lessonIntroCmd,
		lessonFinishCmd,
		lessonTimeCmd,
		lessonSummaryCmd,
		lessonExportCmd,
		lessonImportCmd,
		lessonShowCmd,
		lessonListCmd,
		lessonTopicsCmd,
		lessonRecommendCmd,
		lessonMasteryCmd,
	)
}

// printProgress prints the lesson's progress after a mutation.
func printProgress(cmd *cobra.Command, t *lessons.Tracker, lessonID string) error {
	l := t.GetLesson(lessonID)
	if l == nil {
		return fmt.Errorf("lesson %s not found", lessonID)
	}
	return printJSON(cmd, l.Progress)
}

func parseExerciseType(s string) (lessons.ExerciseType, error) {
	switch t := lessons.ExerciseType(s); t {
	case lessons.ExerciseMultipleChoice, lessons.ExerciseOpenEnded,
		lessons.ExerciseCode, lessons.ExerciseProblemSolving:
		return t, nil
	}
	return "", fmt.Errorf("invalid exercise type %q", s)
}

func parseSection(s string) (lessons.Section, error) {
	switch sec := lessons.Section(s); sec {
	case lessons.SectionIntroduction, lessons.SectionConcepts, lessons.SectionPractice,
		lessons.SectionQuiz, lessons.SectionSummary:
		return sec, nil
	}
	return "", fmt.Errorf("invalid section %q", s)
}
