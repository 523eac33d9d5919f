package toolchain

import (
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/Cyclone1070/mfdeploy/internal/resolve"
)

// Product is the toolchain variant a run is carried out with.
type Product string

const (
	// FullToolchain (Enterprise Developer) can compile sources into load modules.
	FullToolchain Product = "ED"
	// RuntimeOnly (Enterprise Server) can only run load modules built elsewhere.
	RuntimeOnly Product = "ES"
)

// EnvJavaHome is the runtime-home variable the Ant build needs.
const EnvJavaHome = "JAVA_HOME"

func (p Product) String() string {
	switch p {
	case FullToolchain:
		return "Micro Focus Enterprise Developer"
	case RuntimeOnly:
		return "Micro Focus Enterprise Server"
	default:
		return string(p)
	}
}

// Selection is the outcome of product selection.
type Selection struct {
	Product Product
	// Requested is what the options file asked for, after defaulting.
	Requested Product
	// JavaHome is set only when Product is FullToolchain.
	JavaHome string
	// JavaHomeSource names where JavaHome came from ("env" or "bundled").
	JavaHomeSource string
}

// Downgraded reports whether the selection fell back from FullToolchain.
func (s Selection) Downgraded() bool {
	return s.Requested == FullToolchain && s.Product == RuntimeOnly
}

// ProductSelector decides between FullToolchain and RuntimeOnly.
type ProductSelector struct {
	fs        FileSystem
	lookupEnv LookupEnv
	log       logrus.FieldLogger
}

func NewProductSelector(fs FileSystem, lookupEnv LookupEnv, log logrus.FieldLogger) *ProductSelector {
	if fs == nil {
		panic("fs is required")
	}
	if lookupEnv == nil {
		panic("lookupEnv is required")
	}
	if log == nil {
		panic("log is required")
	}
	return &ProductSelector{fs: fs, lookupEnv: lookupEnv, log: log}
}

// Select decides the product for this run.
//
// An empty request means FullToolchain. A FullToolchain request is downgraded to
// RuntimeOnly when the compiler bridge jar is missing, or when no Java runtime can
// be found. Any value other than ED or ES yields *InvalidProductError.
func (s *ProductSelector) Select(requested string, env Environment, p Platform) (Selection, error) {
	sel := Selection{Requested: FullToolchain}
	if requested != "" {
		sel.Requested = Product(requested)
	}
	sel.Product = sel.Requested

	if sel.Requested == FullToolchain {
		sel = s.checkBuildCapable(sel, env, p)
	}

	switch sel.Product {
	case FullToolchain, RuntimeOnly:
		s.log.Infof("Application build/deploy configured for %s", sel.Product)
		return sel, nil
	default:
		s.log.Error("Invalid Micro Focus product specified")
		return Selection{}, &InvalidProductError{Value: requested}
	}
}

// checkBuildCapable applies the ordered downgrade checks to a FullToolchain request.
func (s *ProductSelector) checkBuildCapable(sel Selection, env Environment, p Platform) Selection {
	if !isFile(s.fs, env.CompilerArtifactPath) {
		s.log.Infof("%s not found, %s cannot build applications", env.CompilerArtifactPath, FullToolchain)
		sel.Product = RuntimeOnly
		return sel
	}

	java := s.javaHomeChain(env, p).Resolve()
	if !java.Found {
		s.log.Infof("%s not set, cannot build application", EnvJavaHome)
		sel.Product = RuntimeOnly
		return sel
	}

	if java.Source == "bundled" {
		s.log.Infof("Using %s=%s", EnvJavaHome, java.Value)
	}
	sel.JavaHome = java.Value
	sel.JavaHomeSource = java.Source
	return sel
}

func (s *ProductSelector) javaHomeChain(env Environment, p Platform) resolve.Chain {
	return resolve.Chain{
		resolve.Env("env", EnvJavaHome, s.lookupEnv),
		{
			Name: "bundled",
			Resolve: func() (string, bool) {
				name, ok := bundledJDKName(p)
				if !ok {
					return "", false
				}
				dir := filepath.Join(env.SecondaryRoot, name)
				return dir, isDir(s.fs, dir)
			},
		},
	}
}

// bundledJDKName is the JDK directory shipped inside the installation, if any.
func bundledJDKName(p Platform) (string, bool) {
	if p.IsWindows() {
		return "AdoptOpenJDK", true
	}
	return "", false
}
