package classify

import "github.com/shanehull/newsgrid/internal/types"

// relevanceKeywords decides whether an entry belongs on the page at all.
var relevanceKeywords = []string{
	"cloud", "aws", "azure", "gcp", "google cloud", "kubernetes", "k8s",
	"iam", "identity", "zero trust", "container", "supply chain",
	"ransomware", "breach", "data leak", "vulnerability", "cve", "exploit",
	"malware", "phishing", "botnet", "security", "patch", "incident",
	"ai", "llm", "genai", "machine learning", "ml",
	"job", "jobs", "hiring", "career", "layoff", "salary",
	"scam", "fraud", "social engineering", "credential", "identity theft",
}

type categoryRule struct {
	category types.Category
	keywords []string
}

// Checked in order; the first rule with a match wins.
var categoryRules = []categoryRule{
	{types.CategoryBreach, []string{"breach", "data leak", "exposed", "leak", "compromise"}},
	{types.CategoryVulnerability, []string{"vulnerability", "cve", "exploit", "rce", "zero-day", "xss", "injection"}},
	{types.CategoryReport, []string{"report", "guidance", "alert", "advisory", "bulletin", "update"}},
}

type tagRule struct {
	tag      string
	keywords []string
}

var tagRules = []tagRule{
	{"AWS", []string{"aws", "amazon"}},
	{"Azure", []string{"azure", "microsoft"}},
	{"GCP", []string{"gcp", "google cloud"}},
	{"Kubernetes", []string{"kubernetes", "k8s"}},
	{"CISA", []string{"cisa"}},
	{"Vulnerability", []string{"vulnerability", "cve", "exploit", "rce", "zero-day"}},
	{"Breach", []string{"breach", "data leak", "exposed"}},
	{"Ransomware", []string{"ransomware"}},
	{"Phishing", []string{"phishing"}},
	{"Identity", []string{"iam", "identity"}},
	{"Supply Chain", []string{"supply chain"}},
	{"Zero Trust", []string{"zero trust"}},
	{"AI", []string{"ai", "llm", "genai", "machine learning", "ml"}},
	{"Jobs", []string{"job", "jobs", "hiring", "career", "layoff", "salary"}},
	{"Scam", []string{"scam", "fraud", "social engineering", "credential"}},
}

const (
	DefaultTag = "Cloud Security"
	MaxTags    = 3
)
