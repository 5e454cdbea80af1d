// Package uspace provides uncertain spaces: named collections of independent
// random variables over gonum's distuv distributions, exposing their moments
// and seeded matrix sampling.
package uspace

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Marginal is a one-dimensional distribution. The distuv types satisfy it.
type Marginal interface {
	Mean() float64
	StdDev() float64
	Rand() float64
}

// RandomVariable is a named marginal.
type RandomVariable struct {
	Name string
	Dist Marginal
}

// Space is an ordered, immutable collection of independent random variables.
// The variable order is fixed and defines the column order of every sample
// matrix drawn from the space.
type Space struct {
	vars []RandomVariable
}

// New builds a space over the given variables.
func New(vars ...RandomVariable) *Space {
	s := &Space{vars: make([]RandomVariable, len(vars))}
	copy(s.vars, vars)
	return s
}

// Dim returns the number of random variables.
func (s *Space) Dim() int { return len(s.vars) }

// Names returns the variable names in column order.
func (s *Space) Names() []string {
	names := make([]string, len(s.vars))
	for i, v := range s.vars {
		names[i] = v.Name
	}
	return names
}

// Variable returns the i-th random variable.
func (s *Space) Variable(i int) RandomVariable { return s.vars[i] }

// Mean returns the marginal means in column order.
func (s *Space) Mean() []float64 {
	m := make([]float64, len(s.vars))
	for i, v := range s.vars {
		m[i] = v.Dist.Mean()
	}
	return m
}

// StdDev returns the marginal standard deviations in column order.
func (s *Space) StdDev() []float64 {
	sd := make([]float64, len(s.vars))
	for i, v := range s.vars {
		sd[i] = v.Dist.StdDev()
	}
	return sd
}

// Sample draws n independent realizations, one per row.
func (s *Space) Sample(n int) *mat.Dense {
	data := mat.NewDense(n, len(s.vars), nil)
	for i := 0; i < n; i++ {
		row := data.RawRowView(i)
		for j, v := range s.vars {
			row[j] = v.Dist.Rand()
		}
	}
	return data
}

// Normal returns a named Gaussian variable. src may be nil for the global
// source.
func Normal(name string, mu, sigma float64, src rand.Source) RandomVariable {
	return RandomVariable{Name: name, Dist: distuv.Normal{Mu: mu, Sigma: sigma, Src: src}}
}

// Uniform returns a named uniform variable on [min, max].
func Uniform(name string, min, max float64, src rand.Source) RandomVariable {
	return RandomVariable{Name: name, Dist: distuv.Uniform{Min: min, Max: max, Src: src}}
}

// Triangular returns a named triangular variable with support [a, b] and
// mode c.
func Triangular(name string, a, b, c float64, src rand.Source) RandomVariable {
	return RandomVariable{Name: name, Dist: distuv.NewTriangle(a, b, c, src)}
}

// Seeded returns a deterministic source for reproducible sampling.
func Seeded(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed)
}
