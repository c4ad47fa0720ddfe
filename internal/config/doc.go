// Package config loads headkit project configuration.
//
// The configuration is stored in headkit.json (or headkit.yaml) at the
// project root. This package handles loading, saving, validating and
// converting it into the settings of the head renderer.
//
// # Configuration File Structure
//
//	{
//	  "theme": "#{cookie.theme ?? 'saga'}",
//	  "primeIcons": true,
//	  "projectStage": "Development",
//	  "validation": {"client": true, "bean": true},
//	  "locales": {"client": true, "default": "en", "supported": ["de", "pt-BR"]},
//	  "cookies": {"secure": true, "sameSite": "Lax"},
//	  "client": {"partialSubmit": true},
//	  "resources": {"dir": "resources", "manifest": "manifest.json", "watch": true},
//	  "server": {"port": 8080, "contextPath": "/shop", "trustedProxies": ["10.0.0.0/8"]}
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	renderer := head.NewRenderer(cfg.HeadConfig())
package config
