package gconf

import (
	"sort"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
)

// Initializer fulfils the Initializer interface to load configurations from
// the genesis file. Every registered package must have its section.
type Initializer struct {
	confs map[string]func() Configuration
}

var _ tokenvm.Initializer = (*Initializer)(nil)

// NewInitializer returns an initializer knowing no packages.
func NewInitializer() *Initializer {
	return &Initializer{confs: make(map[string]func() Configuration)}
}

// Register declares the configuration of a package. The constructor must
// return a new instance every time it is called.
func (i *Initializer) Register(pkg string, fn func() Configuration) *Initializer {
	if _, ok := i.confs[pkg]; ok {
		panic("configuration registered twice: " + pkg)
	}
	i.confs[pkg] = fn
	return i
}

// FromGenesis will parse the "conf" section of the genesis and save each
// registered package configuration to the database.
func (i *Initializer) FromGenesis(opts tokenvm.Options, db tokenvm.KVStore) error {
	var confOptions tokenvm.Options
	if err := opts.ReadOptions("conf", &confOptions); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	for pkg := range confOptions {
		if _, ok := i.confs[pkg]; !ok {
			return errors.Wrapf(errors.ErrInput, "unknown configuration package %q", pkg)
		}
	}

	// Deterministic order keeps the database writes reproducible.
	pkgs := make([]string, 0, len(i.confs))
	for pkg := range i.confs {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)

	for _, pkg := range pkgs {
		if err := InitConfig(db, opts, pkg, i.confs[pkg]()); err != nil {
			return err
		}
	}
	return nil
}
