package skills

// defaultAliases maps every recognised surface form to its canonical token.
// A canonical token is either absent or maps to itself, which keeps
// normalization idempotent.
var defaultAliases = map[string]string{
	"python": "python", "python3": "python", "py": "python",
	"javascript": "javascript", "js": "javascript",
	"node.js": "nodejs", "nodejs": "nodejs", "node": "nodejs",
	"typescript": "typescript", "ts": "typescript",
	"react": "react", "reactjs": "react", "react.js": "react",
	"angular": "angular", "angularjs": "angular",
	"vue": "vue", "vuejs": "vue", "vue.js": "vue",
	"java": "java",
	"c++":  "cpp", "cpp": "cpp",
	"c#": "csharp", "csharp": "csharp", "c-sharp": "csharp",
	"golang": "go", "go": "go",
	"rust":  "rust",
	"ruby":  "ruby",
	"rails": "ruby-on-rails", "ruby on rails": "ruby-on-rails",
	"php":        "php",
	"swift":      "swift",
	"kotlin":     "kotlin",
	"scala":      "scala",
	"r":          "r",
	"c":          "c",
	"sql":        "sql",
	"mysql":      "mysql",
	"postgresql": "postgresql", "postgres": "postgresql",
	"mongodb": "mongodb", "mongo": "mongodb",
	"redis":         "redis",
	"elasticsearch": "elasticsearch",
	"kafka":         "kafka",
	"rabbitmq":      "rabbitmq",
	"aws":           "aws", "amazon web services": "aws",
	"gcp": "gcp", "google cloud": "gcp",
	"azure": "azure", "microsoft azure": "azure",
	"docker":     "docker",
	"kubernetes": "kubernetes", "k8s": "kubernetes",
	"terraform": "terraform",
	"ansible":   "ansible",
	"jenkins":   "jenkins",
	"ci/cd":     "ci-cd", "cicd": "ci-cd",
	"git":              "git",
	"github":           "github",
	"gitlab":           "gitlab",
	"linux":            "linux",
	"unix":             "unix",
	"machine learning": "machine-learning", "ml": "machine-learning",
	"deep learning": "deep-learning", "dl": "deep-learning",
	"artificial intelligence": "ai", "ai": "ai",
	"nlp": "nlp", "natural language processing": "nlp",
	"computer vision": "computer-vision", "cv": "computer-vision",
	"tensorflow": "tensorflow", "tf": "tensorflow",
	"pytorch": "pytorch", "torch": "pytorch",
	"keras":        "keras",
	"scikit-learn": "scikit-learn", "sklearn": "scikit-learn",
	"pandas":     "pandas",
	"numpy":      "numpy",
	"scipy":      "scipy",
	"matplotlib": "matplotlib",
	"tableau":    "tableau",
	"power bi":   "power-bi", "powerbi": "power-bi",
	"data analysis":    "data-analysis",
	"data engineering": "data-engineering",
	"data science":     "data-science",
	"etl":              "etl",
	"spark":            "apache-spark", "apache spark": "apache-spark",
	"hadoop":  "hadoop",
	"hive":    "hive",
	"airflow": "apache-airflow", "apache airflow": "apache-airflow",
	"rest api": "rest-api", "restful": "rest-api",
	"graphql":       "graphql",
	"microservices": "microservices",
	"system design": "system-design",
	"dsa":           "data-structures", "data structures": "data-structures",
	"algorithms":  "algorithms",
	"agile":       "agile",
	"scrum":       "scrum",
	"jira":        "jira",
	"figma":       "figma",
	"sketch":      "sketch",
	"adobe xd":    "adobe-xd",
	"photoshop":   "photoshop",
	"illustrator": "illustrator",
	"html":        "html",
	"css":         "css",
	"sass":        "sass",
	"tailwind":    "tailwind-css", "tailwindcss": "tailwind-css",
	"bootstrap":   "bootstrap",
	"django":      "django",
	"flask":       "flask",
	"fastapi":     "fastapi",
	"spring":      "spring",
	"spring boot": "spring-boot", "springboot": "spring-boot",
	".net": "dotnet", "dotnet": "dotnet",
	"asp.net": "asp-dotnet",
	"express": "express", "expressjs": "express",
	"next.js": "nextjs", "nextjs": "nextjs",
	"nuxt": "nuxt", "nuxtjs": "nuxt",
	"flutter":            "flutter",
	"react native":       "react-native",
	"android":            "android",
	"ios":                "ios",
	"mobile development": "mobile-development",
	"devops":             "devops",
	"sre":                "sre", "site reliability": "sre",
	"cybersecurity":       "cybersecurity",
	"security":            "security",
	"penetration testing": "penetration-testing",
	"blockchain":          "blockchain",
	"web3":                "web3",
	"solidity":            "solidity",
	"unity":               "unity",
	"unreal":              "unreal-engine",
	"game development":    "game-development",
	"data annotation":     "data-annotation", "data labeling": "data-annotation",
	"excel":              "excel",
	"sap":                "sap-erp",
	"salesforce":         "salesforce-crm",
	"communication":      "communication",
	"leadership":         "leadership",
	"project management": "project-management",
	"product management": "product-management",
	"ux":                 "ux-design", "ux design": "ux-design",
	"ui": "ui-design", "ui design": "ui-design",
	"ui/ux":             "ui-ux-design",
	"user research":     "user-research",
	"seo":               "seo",
	"sem":               "sem",
	"google analytics":  "google-analytics",
	"digital marketing": "digital-marketing",
	"content marketing": "content-marketing",
	"social media":      "social-media-marketing",
	"copywriting":       "copywriting",
}
