// Package validation provides pure validation functions for promotion input.
//
// Validators return the offending field and a message, or two empty strings
// when the input is valid. They never perform I/O.
//
// # Functions
//
//   - ValidateApplicationName: CodeDeploy application names
//   - ValidateRepositoryName: "owner/name" GitHub repositories
//   - ValidateConfirmation: the explicit "yes" before a manual deployment
//   - ValidateGroupTarget: fields needed to name a deployment group
//   - ValidateTrigger: required fields of a pipeline invocation
package validation
