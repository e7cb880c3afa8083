// Package deployment provides pure functions for promoting a commit to a
// CodeDeploy deployment group.
//
// All functions are pure (no I/O, no side effects). The imperative shell
// (internal/shell/promotion) calls them between remote calls.
//
// # Functions
//
//   - Naming: Derive deployment group names from branches (SanitizeBranchName, DeploymentGroupName)
//   - Description: Stamp and read run numbers (Description, ExtractRunNumber)
//   - Sequencing: Decide whether a run may deploy (CheckSequence)
//   - Conflicts: Read the blocking deployment id from service messages (ExtractConflictingDeployment)
//   - Launch: Bounded create/wait/poll state machine (LaunchTracker)
//
// # Usage
//
//	groupName := deployment.DeploymentGroupName(profile, branch, pr)
//	check := deployment.CheckSequence(lastDescription, runNumber)
//	match, ok := deployment.ExtractConflictingDeployment(msg, deployment.DefaultConflictMatchers())
package deployment
