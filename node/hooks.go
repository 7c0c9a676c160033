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

import "context"

// BuildHook is an externally supplied build step for one extension slot. The
// stage driver invokes a hook at most once; it may block on I/O and should
// honor cancellation of the passed context. A hook communicates its result
// through the container: on success it has stored the component it built via
// the build context, on error the whole build aborts. Hooks for later stages
// observe the components stored by earlier ones.
type BuildHook interface {
	Run(ctx context.Context, bctx *BuildContext) error
}

// BuildHookFunc is a function adapter for BuildHook.
type BuildHookFunc func(ctx context.Context, bctx *BuildContext) error

func (f BuildHookFunc) Run(ctx context.Context, bctx *BuildContext) error {
	return f(ctx, bctx)
}

// OnRPCStartedHook runs after the RPC stage has completed and the server
// slot is filled, giving extensions a chance to act on the live RPC surface.
// Unlike build hooks, every registered instance runs, in registration order,
// and a failing instance does not keep the remaining ones from running.
type OnRPCStartedHook interface {
	OnRPCStarted(ctx context.Context, rpc RPCComponent) error
}

// OnRPCStartedFunc is a function adapter for OnRPCStartedHook.
type OnRPCStartedFunc func(ctx context.Context, rpc RPCComponent) error

func (f OnRPCStartedFunc) OnRPCStarted(ctx context.Context, rpc RPCComponent) error {
	return f(ctx, rpc)
}
