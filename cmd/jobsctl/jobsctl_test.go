package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lokesh1028/agentjobs/internal/db/dbtest"
	"github.com/Lokesh1028/agentjobs/internal/models"
	"github.com/Lokesh1028/agentjobs/internal/resume/resumetest"
	"github.com/Lokesh1028/agentjobs/internal/store"
)

func TestCommandTree(t *testing.T) {
	assert.Equal(t, appName, rootCmd.Use)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"migrate", "up"}, "up"},
		{[]string{"migrate", "down"}, "down"},
		{[]string{"migrate", "force"}, "force VERSION"},
		{[]string{"seed"}, "seed"},
		{[]string{"reindex"}, "reindex"},
		{[]string{"deactivate"}, "deactivate JOB_ID..."},
		{[]string{"search"}, "search [QUERY]"},
		{[]string{"match"}, "match"},
		{[]string{"version"}, "version"},
	}
	for _, tt := range tests {
		cmd, _, err := rootCmd.Find(tt.args)
		require.NoError(t, err, tt.args)
		assert.Equal(t, tt.want, cmd.Use)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("DATABASE_URL", "sqlite://env.db")
	t.Setenv("MATCH_THRESHOLD", "40")

	cfg := loadConfig()
	assert.Equal(t, "sqlite://env.db", cfg.DatabaseURL)
	assert.Equal(t, 40, cfg.MatchThreshold)

	viper.Set("database-url", "sqlite://flag.db")
	viper.Set("match-threshold", 55)
	cfg = loadConfig()
	assert.Equal(t, "sqlite://flag.db", cfg.DatabaseURL)
	assert.Equal(t, 55, cfg.MatchThreshold)
}

func TestReadResume(t *testing.T) {
	dir := t.TempDir()

	txt := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(txt, []byte("Go and Docker"), 0o644))
	text, err := readResume(txt)
	require.NoError(t, err)
	assert.Equal(t, "Go and Docker", text)

	pdf := filepath.Join(dir, "resume.pdf")
	require.NoError(t, os.WriteFile(pdf, resumetest.PDF("Kubernetes operator"), 0o644))
	text, err = readResume(pdf)
	require.NoError(t, err)
	assert.Contains(t, text, "Kubernetes")

	_, err = readResume(filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}

func TestDeactivate(t *testing.T) {
	st := store.NewStore(dbtest.New(t))
	ctx := context.Background()
	require.NoError(t, st.UpsertJob(ctx, &models.Job{ID: "job-1", Title: "Go Developer", IsActive: true}))

	got := deactivate(ctx, st, []string{"job-1", "job-2"})
	assert.Equal(t, []deactivateResult{
		{ID: "job-1", Found: true},
		{ID: "job-2", Found: false},
	}, got)
}
