// Package seed loads the offline fallback catalogue into an empty store.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Lokesh1028/agentjobs/internal/models"
	"github.com/Lokesh1028/agentjobs/internal/search"
	"github.com/Lokesh1028/agentjobs/internal/store"
)

var companies = []models.Company{
	{Name: "Example Tech Co", Industry: "Technology", Size: "large"},
	{Name: "DataWorks Inc", Industry: "Data & Analytics", Size: "medium"},
	{Name: "CloudFirst Systems", Industry: "Cloud Computing", Size: "large"},
	{Name: "DesignHub Studio", Industry: "Design", Size: "startup"},
	{Name: "GrowthPath Marketing", Industry: "Marketing", Size: "medium"},
	{Name: "FinEdge Solutions", Industry: "Fintech", Size: "medium"},
	{Name: "PeopleFirst HR", Industry: "HR Tech", Size: "startup"},
	{Name: "SupportHero", Industry: "Customer Service", Size: "medium"},
}

type fallbackJob struct {
	title     string
	company   int
	category  string
	skills    []string
	salaryMin int
	salaryMax int
}

var jobs = []fallbackJob{
	// Engineering (15)
	{"Software Engineer", 0, "engineering", []string{"python", "django", "postgresql"}, 55000, 120000},
	{"Senior Software Engineer", 0, "engineering", []string{"java", "spring-boot", "kubernetes"}, 120000, 250000},
	{"Frontend Developer", 0, "engineering", []string{"react", "typescript", "css"}, 50000, 100000},
	{"Backend Engineer", 2, "engineering", []string{"go", "docker", "aws"}, 80000, 160000},
	{"Full Stack Developer", 2, "engineering", []string{"javascript", "nodejs", "mongodb"}, 60000, 130000},
	{"DevOps Engineer", 2, "engineering", []string{"docker", "kubernetes", "terraform", "aws"}, 90000, 180000},
	{"Mobile Developer (Android)", 0, "engineering", []string{"kotlin", "android", "firebase"}, 60000, 130000},
	{"Mobile Developer (iOS)", 0, "engineering", []string{"swift", "ios", "firebase"}, 60000, 130000},
	{"QA Engineer", 2, "engineering", []string{"python", "selenium", "ci-cd"}, 45000, 90000},
	{"Site Reliability Engineer", 2, "engineering", []string{"linux", "kubernetes", "python", "aws"}, 100000, 200000},
	{"Platform Engineer", 2, "engineering", []string{"aws", "terraform", "docker"}, 90000, 180000},
	{"Security Engineer", 0, "engineering", []string{"python", "linux", "aws"}, 100000, 200000},
	{"Node.js Developer", 0, "engineering", []string{"nodejs", "typescript", "postgresql"}, 55000, 110000},
	{"Python Developer", 2, "engineering", []string{"python", "fastapi", "docker"}, 55000, 110000},
	{"React Developer", 0, "engineering", []string{"react", "javascript", "html", "css"}, 50000, 100000},
	// Data Science (8)
	{"Data Scientist", 1, "data-science", []string{"python", "machine-learning", "sql"}, 80000, 160000},
	{"ML Engineer", 1, "data-science", []string{"python", "pytorch", "docker"}, 100000, 200000},
	{"Data Analyst", 1, "data-science", []string{"sql", "python", "tableau"}, 45000, 90000},
	{"Data Engineer", 1, "data-science", []string{"python", "spark", "sql", "aws"}, 80000, 160000},
	{"NLP Engineer", 1, "data-science", []string{"python", "nlp", "pytorch"}, 100000, 200000},
	{"Analytics Engineer", 1, "data-science", []string{"sql", "python", "data-analysis"}, 70000, 140000},
	{"Deep Learning Engineer", 1, "data-science", []string{"python", "tensorflow", "deep-learning"}, 110000, 220000},
	{"BI Developer", 1, "data-science", []string{"sql", "power-bi", "excel"}, 50000, 100000},
	// Design (5)
	{"Product Designer", 3, "design", []string{"figma", "ui-design", "ux-design"}, 60000, 120000},
	{"UX Designer", 3, "design", []string{"figma", "user-research", "prototyping"}, 50000, 100000},
	{"UI Designer", 3, "design", []string{"figma", "photoshop", "illustrator"}, 40000, 80000},
	{"Visual Designer", 3, "design", []string{"figma", "photoshop", "illustrator"}, 40000, 80000},
	{"Design System Lead", 3, "design", []string{"figma", "design-systems", "css"}, 100000, 200000},
	// Product (4)
	{"Product Manager", 0, "product", []string{"product-management", "agile", "sql"}, 80000, 160000},
	{"Senior Product Manager", 2, "product", []string{"product-management", "data-analysis", "agile"}, 150000, 300000},
	{"Technical Product Manager", 0, "product", []string{"product-management", "sql", "python"}, 100000, 200000},
	{"Product Owner", 2, "product", []string{"agile", "scrum", "jira"}, 70000, 140000},
	// Marketing (4)
	{"Digital Marketing Manager", 4, "marketing", []string{"digital-marketing", "seo", "google-analytics"}, 50000, 100000},
	{"Content Marketing Manager", 4, "marketing", []string{"content-marketing", "seo", "copywriting"}, 45000, 90000},
	{"Growth Marketing Manager", 4, "marketing", []string{"digital-marketing", "analytics", "a/b-testing"}, 60000, 120000},
	{"SEO Specialist", 4, "marketing", []string{"seo", "google-analytics", "html"}, 35000, 70000},
	// Sales (3)
	{"Sales Executive", 5, "sales", []string{"salesforce-crm", "communication", "negotiation"}, 40000, 80000},
	{"Business Development Manager", 5, "sales", []string{"business-development", "communication", "excel"}, 60000, 120000},
	{"Account Manager", 5, "sales", []string{"crm", "communication", "presentation"}, 50000, 100000},
	// Finance (3)
	{"Financial Analyst", 5, "finance", []string{"excel", "sql", "financial-modeling"}, 50000, 100000},
	{"Finance Manager", 5, "finance", []string{"excel", "financial-analysis", "accounting"}, 80000, 160000},
	{"Risk Analyst", 5, "finance", []string{"excel", "python", "risk-management"}, 60000, 120000},
	// HR (3)
	{"HR Business Partner", 6, "hr", []string{"hr", "communication", "people-management"}, 50000, 100000},
	{"Technical Recruiter", 6, "hr", []string{"recruitment", "sourcing", "communication"}, 40000, 80000},
	{"People Operations Manager", 6, "hr", []string{"hr", "analytics", "communication"}, 60000, 120000},
	// Operations (2)
	{"Operations Manager", 0, "operations", []string{"excel", "sql", "project-management"}, 60000, 120000},
	{"Program Manager", 2, "operations", []string{"project-management", "agile", "communication"}, 80000, 160000},
	// Customer Support (2)
	{"Customer Support Specialist", 7, "customer-support", []string{"communication", "problem-solving", "crm"}, 25000, 50000},
	{"Customer Success Manager", 7, "customer-support", []string{"customer-success", "communication", "analytics"}, 50000, 100000},
	// Legal (1)
	{"Legal Counsel", 5, "legal", []string{"legal", "compliance", "contract-management"}, 80000, 160000},
}

// Result reports what Run wrote.
type Result struct {
	Skipped   bool `json:"skipped"`
	Companies int  `json:"companies"`
	Jobs      int  `json:"jobs"`
	Indexed   int  `json:"indexed"`
}

// Run inserts the fallback catalogue when the store holds no jobs and then
// rebuilds the search index. Fallback jobs carry no apply URL since none can
// be verified offline. Posting dates are spread over the 30 days before now.
func Run(ctx context.Context, st *store.Store, now time.Time) (*Result, error) {
	existing, err := st.CountJobs(ctx)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return &Result{Skipped: true}, nil
	}

	res := &Result{}
	ids := make([]string, len(companies))
	for i := range companies {
		c := companies[i]
		if ids[i], err = st.UpsertCompany(ctx, &c); err != nil {
			return nil, fmt.Errorf("seed company %q: %w", c.Name, err)
		}
		res.Companies++
	}

	for i, j := range jobs {
		company := companies[j.company]
		short := fmt.Sprintf("%s at %s. Skills: %s", j.title, company.Name, strings.Join(j.skills[:min(len(j.skills), 3)], ", "))
		job := &models.Job{
			CompanyID:        ids[j.company],
			Title:            j.title,
			Company:          models.CompanySummary{Name: company.Name},
			Location:         "Remote",
			LocationType:     string(models.LocationRemote),
			SalaryMin:        models.IntPtr(j.salaryMin),
			SalaryMax:        models.IntPtr(j.salaryMax),
			SalaryText:       search.SalaryRange("₹", models.IntPtr(j.salaryMin), models.IntPtr(j.salaryMax)),
			ExperienceMin:    models.IntPtr(2),
			ExperienceMax:    models.IntPtr(5),
			Skills:           j.skills,
			Category:         j.category,
			EmploymentType:   string(models.EmploymentFullTime),
			Description:      short,
			DescriptionShort: short,
			Source:           "seed",
			SourceID:         fmt.Sprintf("seed-%02d", i+1),
			PostedAt:         models.FormatTimestamp(now.Add(-time.Duration(i%30) * 24 * time.Hour)),
			IsActive:         true,
		}
		if err := st.UpsertJob(ctx, job); err != nil {
			return nil, fmt.Errorf("seed job %q: %w", j.title, err)
		}
		res.Jobs++
	}

	if res.Indexed, err = st.RebuildIndex(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

// Size returns the number of companies and jobs in the catalogue.
func Size() (int, int) {
	return len(companies), len(jobs)
}
