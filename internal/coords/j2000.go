package coords

import "math"

// J2000 converts galactic coordinates with the IAU rotation between the
// galactic frame and the J2000 equatorial frame.
type J2000 struct{}

// Rows of the galactic → equatorial rotation (transpose of the
// equatorial → galactic matrix, Hipparcos definition).
var galToEq = [3][3]float64{
	{-0.0548755604162154, 0.4941094278755837, -0.8676661490190047},
	{-0.8734370902348850, -0.4448296299600112, -0.1980763734312015},
	{-0.4838350155487132, 0.7469822444972189, 0.4559837761750669},
}

func (J2000) GalacticToEquatorial(g Galactic) (Equatorial, error) {
	l := g.Lon * math.Pi / 180
	b := g.Lat * math.Pi / 180

	v := [3]float64{
		math.Cos(b) * math.Cos(l),
		math.Cos(b) * math.Sin(l),
		math.Sin(b),
	}

	var r [3]float64
	for i := 0; i < 3; i++ {
		r[i] = galToEq[i][0]*v[0] + galToEq[i][1]*v[1] + galToEq[i][2]*v[2]
	}

	ra := math.Atan2(r[1], r[0]) * 180 / math.Pi
	if ra < 0 {
		ra += 360
	}
	dec := math.Asin(math.Max(-1, math.Min(1, r[2]))) * 180 / math.Pi

	return Equatorial{RA: ra, Dec: dec}, nil
}
