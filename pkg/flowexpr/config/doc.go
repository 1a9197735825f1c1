/*
Package config provides type-safe configuration extraction from map[string]any.

It is used to configure a flowexpr Engine from YAML or JSON:

	# flowexpr.yaml
	locale: de-DE
	null_substitution: empty
	metrics: true
	tracing: false
	aliases:
	  plus: "+"
	  lower: toLower

	cfg, err := config.FromFile("flowexpr.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	engine, err := flowexpr.NewEngine(flowexpr.WithConfig(cfg))

Accessors never fail: a missing key or a value of the wrong type yields the
supplied default.

	locale := cfg.String("locale", "")         // "de-DE"
	metrics := cfg.Bool("metrics", false)      // true
	aliases := cfg.StringMap("aliases", nil)   // map[lower:toLower plus:+]

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
