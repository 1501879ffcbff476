package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Lokesh1028/agentjobs/internal/app"
	"github.com/Lokesh1028/agentjobs/internal/models"
	"github.com/Lokesh1028/agentjobs/internal/resume"
)

var searchCmd = &cobra.Command{
	Use:   "search [QUERY]",
	Short: "Search active jobs and print the result page as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSearch,
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank active jobs against a candidate profile and print them as JSON",
	RunE:  runMatch,
}

func init() {
	f := searchCmd.Flags()
	f.String("title", "", "title substring")
	f.String("location", "", "location substring")
	f.String("location-type", "", "onsite, remote or hybrid")
	f.String("company", "", "company name substring")
	f.StringSlice("skills", nil, "required skills (all must appear)")
	f.String("category", "", "job category")
	f.String("employment-type", "", "full-time, part-time, contract or internship")
	f.Int("salary-min", 0, "minimum monthly salary")
	f.Int("experience", -1, "years of experience the job must accept")
	f.String("posted-after", "", "ISO date")
	f.String("sort", models.SortRelevance, "relevance, posted_at or salary")
	f.Int("limit", 20, "page size")
	f.Int("offset", 0, "page offset")
	f.Bool("use-ai", false, "expand the query with Gemini")

	m := matchCmd.Flags()
	m.StringSlice("skills", nil, "candidate skills")
	m.String("resume", "", "resume file, PDF or plain text")
	m.Int("experience", -1, "years of experience")
	m.StringSlice("locations", nil, "preferred locations")
	m.Int("salary-min", 0, "expected monthly salary floor")
	m.String("preferences", "", "free-text job preferences")
	m.Int("limit", 20, "number of jobs to return")

	rootCmd.AddCommand(searchCmd, matchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	req := &models.SearchRequest{}
	if len(args) == 1 {
		req.Query = args[0]
	}
	req.Filters.Title, _ = f.GetString("title")
	req.Filters.Location, _ = f.GetString("location")
	req.Filters.LocationType, _ = f.GetString("location-type")
	req.Filters.Company, _ = f.GetString("company")
	req.Filters.Skills, _ = f.GetStringSlice("skills")
	req.Filters.Category, _ = f.GetString("category")
	req.Filters.EmploymentType, _ = f.GetString("employment-type")
	req.Filters.PostedAfter, _ = f.GetString("posted-after")
	if v, _ := f.GetInt("salary-min"); v > 0 {
		req.Filters.SalaryMin = &v
	}
	if v, _ := f.GetInt("experience"); v >= 0 {
		req.Filters.ExperienceMin = &v
		req.Filters.ExperienceMax = &v
	}
	req.Sort, _ = f.GetString("sort")
	req.Limit, _ = f.GetInt("limit")
	req.Offset, _ = f.GetInt("offset")
	req.UseAI, _ = f.GetBool("use-ai")

	if !models.ValidSort(req.Sort) {
		return fmt.Errorf("invalid sort %q", req.Sort)
	}

	return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
		resp, err := a.Search.Search(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(resp)
	})
}

func runMatch(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	p := &models.MatchProfile{}
	p.Skills, _ = f.GetStringSlice("skills")
	p.PreferredLocations, _ = f.GetStringSlice("locations")
	p.JobPreferences, _ = f.GetString("preferences")
	p.Limit, _ = f.GetInt("limit")
	if v, _ := f.GetInt("experience"); v >= 0 {
		p.ExperienceYears = &v
	}
	if v, _ := f.GetInt("salary-min"); v > 0 {
		p.SalaryMin = &v
	}
	if path, _ := f.GetString("resume"); path != "" {
		text, err := readResume(path)
		if err != nil {
			return err
		}
		p.ResumeText = text
	}

	if p.IsEmpty() {
		return fmt.Errorf("provide at least one of --skills, --resume or --preferences")
	}

	return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
		result, err := a.Matcher.Match(ctx, p)
		if err != nil {
			return err
		}
		return printJSON(result)
	})
}

func readResume(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read resume: %w", err)
	}
	if resume.IsPDF(data) {
		return resume.ExtractText(data)
	}
	return string(data), nil
}
