/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package version_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gren-lsp.dev/server/internal/version"
)

func TestGetVersionDefaultsToDev(t *testing.T) {
	require.Equal(t, "dev", version.GetVersion())
}

func TestBuildInfoStringIncludesAllFields(t *testing.T) {
	info := version.GetBuildInfo()
	s := info.String()
	require.Contains(t, s, info.Version)
	require.Contains(t, s, info.Commit)
	require.Contains(t, s, info.Date)
}
