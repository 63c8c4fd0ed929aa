// Copyright 2024 The Prbot Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

// StepLabel is the discrete pull-request lifecycle stage computed by the
// status engine, mirrored as a forge label and encoded in the commit-status
// description.
type StepLabel string

const (
	StepLocked                 StepLabel = "Locked"
	StepWip                    StepLabel = "Wip"
	StepAwaitingChecks         StepLabel = "AwaitingChecks"
	StepAwaitingChanges        StepLabel = "AwaitingChanges"
	StepAwaitingRequiredReview StepLabel = "AwaitingRequiredReview"
	StepAwaitingReview         StepLabel = "AwaitingReview"
	StepAwaitingQA             StepLabel = "AwaitingQA"
	StepAwaitingMerge          StepLabel = "AwaitingMerge"
)

// ChecksStatus is the derived status of a commit's check suites.
type ChecksStatus string

const (
	ChecksSkipped ChecksStatus = "Skipped"
	ChecksWaiting ChecksStatus = "Waiting"
	ChecksPass    ChecksStatus = "Pass"
	ChecksFail    ChecksStatus = "Fail"
)

// CommitState is the tri-state a commit status line can carry on the forge.
type CommitState string

const (
	CommitSuccess CommitState = "success"
	CommitPending CommitState = "pending"
	CommitFailure CommitState = "failure"
)

// CommitStateFor maps a StepLabel to the commit-status state posted for it,
// per the reconciliation rule in the status engine.
func CommitStateFor(step StepLabel) CommitState {
	switch step {
	case StepAwaitingMerge, StepLocked:
		return CommitSuccess
	case StepAwaitingChanges:
		return CommitFailure
	default:
		return CommitPending
	}
}
