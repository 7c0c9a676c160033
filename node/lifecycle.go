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

// Lifecycle encompasses the behavior of services that can be started and
// stopped on the node. Every extension component constructed by a build hook
// implements Lifecycle; the launch code brings them online after the build
// completes and winds them down in reverse order on shutdown.
type Lifecycle interface {
	// Start is called after the extension build has finished to spawn any
	// goroutines required by the service.
	Start() error

	// Stop terminates all goroutines belonging to the service, blocking until
	// they are all terminated.
	Stop() error
}
