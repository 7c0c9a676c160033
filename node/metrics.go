// Copyright 2026 The gantry Authors
// This file is part of the gantry library.
//
// The gantry library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gantry library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the gantry library. If not, see <http://www.gnu.org/licenses/>.

package node

import "github.com/ethereum/go-ethereum/metrics"

var (
	pipelineStageTimer = metrics.NewRegisteredTimer("build/stage/pipeline", nil)
	engineStageTimer   = metrics.NewRegisteredTimer("build/stage/engine", nil)
	rpcStageTimer      = metrics.NewRegisteredTimer("build/stage/rpc", nil)
	stageFailureMeter  = metrics.NewRegisteredMeter("build/failures", nil)
)

// stageTimer returns the hook duration timer of the given build stage.
func stageTimer(stage string) *metrics.Timer {
	switch stage {
	case StageEngine:
		return engineStageTimer
	case StageRPC:
		return rpcStageTimer
	default:
		return pipelineStageTimer
	}
}
