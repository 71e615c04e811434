package donation

import "time"

// nowFunc is swapped in tests to pin campaign expiry checks.
var nowFunc = time.Now
