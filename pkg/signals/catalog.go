package signals

// Descriptor documents one signal.
type Descriptor struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// Signal value types.
const (
	TypeBucket  = "bucket"
	TypeInt     = "int"
	TypeBool    = "bool"
	TypeNumber  = "number"
	TypeStrings = "list<string>"
)

// Catalog lists every signal Values exposes, in a stable order.
func Catalog() []Descriptor {
	return []Descriptor{
		{NameTotalLines, "Total Lines", "Sum of added and removed lines over all files.", TypeInt},
		{NameDiffSizeBucket, "Diff Size", "Total lines bucketed by the diff size thresholds.", TypeBucket},
		{NameTouchesCriticalArea, "Touches Critical Area", "True when any file's area is a configured critical area.", TypeBool},
		{NameCriticalAreas, "Critical Areas", "Critical areas touched, in first-occurrence order.", TypeStrings},
		{NameCoverageKnown, "Coverage Known", "True when the input carries a coverage delta.", TypeBool},
		{NameCoverageDelta, "Coverage Delta", "Coverage change in percentage points; null when unknown.", TypeNumber},
		{NameCoverageRegressed, "Coverage Regressed", "True when the coverage delta is below minus the tolerance. Unknown is never a regression.", TypeBool},
		{NameFileCount, "File Count", "Number of distinct paths touched.", TypeInt},
		{NameFileCountBucket, "File Count Bucket", "Distinct paths bucketed by the file count thresholds.", TypeBucket},
		{NameTestFiles, "Test Files", "Files recognized as tests by directory or name.", TypeInt},
		{NameSourceFiles, "Source Files", "Non-test, non-vendored files in a programming language.", TypeInt},
		{NameDocsOnly, "Docs Only", "True when every touched file is documentation.", TypeBool},
		{NameVendorFiles, "Vendored Files", "Files under vendored or third-party paths.", TypeInt},
		{NameDependencyManifests, "Dependency Manifests", "Touched dependency manifest paths.", TypeStrings},
		{NameLanguages, "Languages", "Detected languages of touched files, sorted.", TypeStrings},
	}
}
