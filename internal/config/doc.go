// Package config defines the format-agnostic model of an orchestration
// plan and its runner manifests, plus the interfaces a format-specific
// loader must implement. The HCL and YAML front-ends both translate into
// this model so the scheduler never touches a parser.
package config
