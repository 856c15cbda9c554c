package payroll

import (
	"math"

	"github.com/go-faster/errors"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/shopspring/decimal"
)

// rateFile is the YAML shape of a rate table. An omitted or `.inf` upper
// bound marks the open-ended top bracket.
//
//	name: KE-2024
//	paye:
//	  - {lower: 0, upper: 24000, rate: 0.10}
//	  - {lower: 24001, rate: 0.25}
//	nssf: {rate: 0.06, cap: 2160}
//	nhif:
//	  - {lower: 0, upper: 5999, fee: 150}
type rateFile struct {
	Name string `yaml:"name"`
	PAYE []struct {
		Lower float64  `yaml:"lower"`
		Upper *float64 `yaml:"upper"`
		Rate  float64  `yaml:"rate"`
	} `yaml:"paye"`
	NSSF struct {
		Rate float64 `yaml:"rate"`
		Cap  float64 `yaml:"cap"`
	} `yaml:"nssf"`
	NHIF []struct {
		Lower float64  `yaml:"lower"`
		Upper *float64 `yaml:"upper"`
		Fee   float64  `yaml:"fee"`
	} `yaml:"nhif"`
}

// LoadRates reads and validates a rate table file.
func LoadRates(path string) (Rates, error) {
	var f rateFile
	if err := cleanenv.ReadConfig(path, &f); err != nil {
		return Rates{}, errors.Wrapf(err, "read rate file %s", path)
	}

	rates := Rates{Name: f.Name}
	for i, b := range f.PAYE {
		lower, err := finite(b.Lower)
		if err != nil {
			return Rates{}, errors.Wrapf(err, "paye bracket %d lower", i)
		}
		rate, err := finite(b.Rate)
		if err != nil {
			return Rates{}, errors.Wrapf(err, "paye bracket %d rate", i)
		}
		upper, err := upperBound(b.Upper)
		if err != nil {
			return Rates{}, errors.Wrapf(err, "paye bracket %d upper", i)
		}
		rates.PAYE = append(rates.PAYE, TaxBracket{Lower: lower, Upper: upper, Rate: rate})
	}
	for i, b := range f.NHIF {
		lower, err := finite(b.Lower)
		if err != nil {
			return Rates{}, errors.Wrapf(err, "nhif bracket %d lower", i)
		}
		fee, err := finite(b.Fee)
		if err != nil {
			return Rates{}, errors.Wrapf(err, "nhif bracket %d fee", i)
		}
		upper, err := upperBound(b.Upper)
		if err != nil {
			return Rates{}, errors.Wrapf(err, "nhif bracket %d upper", i)
		}
		rates.NHIF = append(rates.NHIF, FlatFeeBracket{Lower: lower, Upper: upper, Fee: fee})
	}
	nssfRate, err := finite(f.NSSF.Rate)
	if err != nil {
		return Rates{}, errors.Wrap(err, "nssf rate")
	}
	nssfCap, err := finite(f.NSSF.Cap)
	if err != nil {
		return Rates{}, errors.Wrap(err, "nssf cap")
	}
	rates.NSSF = NSSFRule{Rate: nssfRate, Cap: nssfCap}

	if err := rates.Validate(); err != nil {
		return Rates{}, errors.Wrapf(err, "rate file %s", path)
	}
	return rates, nil
}

func finite(v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, errors.Wrapf(ErrMalformedBracketTable, "value %v is not finite", v)
	}
	return decimal.NewFromFloat(v), nil
}

func upperBound(v *float64) (*decimal.Decimal, error) {
	if v == nil || math.IsInf(*v, 1) {
		return nil, nil
	}
	d, err := finite(*v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
