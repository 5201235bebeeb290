// Copyright (c) 2016-2019 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package fileindex

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegisterAndGetInfo(t *testing.T) {
	idx, _, cleanup := Fixture()
	defer cleanup()

	require.NoError(t, idx.Register("h1", "c1", "a.txt", 3, ""))

	info, err := idx.GetInfo("h1", "c1", "a.txt")
	require.NoError(t, err)
	require.NotNil(t, info.RemainingDownloads)
	require.EqualValues(t, 3, *info.RemainingDownloads)
	require.Nil(t, info.ExpiresAt)
}

func TestRegisterUnlimited(t *testing.T) {
	idx, _, cleanup := Fixture()
	defer cleanup()

	require.NoError(t, idx.Register("h1", "c1", "a.txt", 0, ""))

	for i := 0; i < 10; i++ {
		require.NoError(t, idx.CheckAndDecrement("h1", "c1", "a.txt"))
	}
}

func TestCheckAndDecrementExhaustion(t *testing.T) {
	idx, _, cleanup := Fixture()
	defer cleanup()

	require.NoError(t, idx.Register("h1", "c1", "a.txt", 1, ""))
	require.NoError(t, idx.CheckAndDecrement("h1", "c1", "a.txt"))
	require.Equal(t, ErrExpired, idx.CheckAndDecrement("h1", "c1", "a.txt"))
}

func TestCheckAndDecrementNotFound(t *testing.T) {
	idx, _, cleanup := Fixture()
	defer cleanup()

	require.Equal(t, ErrNotFound, idx.CheckAndDecrement("nope", "c1", "a.txt"))
}

func TestCheckAndDecrementConcurrent(t *testing.T) {
	idx, _, cleanup := Fixture()
	defer cleanup()

	require.NoError(t, idx.Register("h1", "c1", "a.txt", 1, ""))

	const n = 10
	var wg sync.WaitGroup
	results := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = idx.CheckAndDecrement("h1", "c1", "a.txt")
		}(i)
	}
	wg.Wait()

	var successes int
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			require.Equal(t, ErrExpired, err)
		}
	}
	require.Equal(t, 1, successes)
}

func TestTimeExpiry(t *testing.T) {
	idx, mock, cleanup := Fixture()
	defer cleanup()

	require.NoError(t, idx.Register("h1", "c1", "a.txt", 0, "3s"))
	require.NoError(t, idx.CheckAndDecrement("h1", "c1", "a.txt"))

	mock.Add(4 * time.Second)

	require.Equal(t, ErrExpired, idx.CheckAndDecrement("h1", "c1", "a.txt"))
}

func TestExpire(t *testing.T) {
	idx, _, cleanup := Fixture()
	defer cleanup()

	require.NoError(t, idx.Register("h1", "c1", "a.txt", 0, ""))
	require.NoError(t, idx.Expire("h1", "c1", "a.txt"))
	require.Equal(t, ErrExpired, idx.CheckAndDecrement("h1", "c1", "a.txt"))
}

func TestExpireNotFound(t *testing.T) {
	idx, _, cleanup := Fixture()
	defer cleanup()

	require.Equal(t, ErrNotFound, idx.Expire("nope", "c1", "a.txt"))
}

func TestCleanupExpired(t *testing.T) {
	idx, mock, cleanup := Fixture()
	defer cleanup()

	require.NoError(t, idx.Register("h1", "c1", "a.txt", 0, "1s"))
	require.NoError(t, idx.Register("h2", "c1", "b.txt", 0, ""))

	mock.Add(2 * time.Second)

	n, err := idx.CleanupExpired()
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.Equal(t, ErrExpired, idx.CheckAndDecrement("h1", "c1", "a.txt"))
	require.NoError(t, idx.CheckAndDecrement("h2", "c1", "b.txt"))
}

func TestRegisterInvalidExpiresIn(t *testing.T) {
	idx, _, cleanup := Fixture()
	defer cleanup()

	require.Equal(t, ErrInvalidDate, idx.Register("h1", "c1", "a.txt", 0, "bogus"))
}

func TestGetInfoNotFound(t *testing.T) {
	idx, _, cleanup := Fixture()
	defer cleanup()

	_, err := idx.GetInfo("nope", "c1", "a.txt")
	require.Equal(t, ErrNotFound, err)
}
