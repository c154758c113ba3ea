// Package config loads the bankprep configuration.
//
// Values are resolved in increasing order of precedence:
//
//  1. Default()
//  2. a YAML file (BANKPREP_CONFIG, bankprep.yaml or configs/bankprep.yaml)
//  3. BANKPREP_* environment variables
//
// For example:
//
//	BANKPREP_PATHS_INPUT_FILE=data/Bank_Personal_Loan_Modelling.xlsx
//	BANKPREP_PIPELINE_PARTITIONS=4
//	BANKPREP_EXPORT_FORMATS=csv,xlsx,arrow
//	BANKPREP_TELEMETRY_METRIC_EXPORTER=prometheus
//
// The merged struct is validated with go-playground/validator tags; a failed
// check returns a CONFIG AppError naming every offending field.
package config
