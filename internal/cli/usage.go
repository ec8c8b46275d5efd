package cli

// Long is the description shown by "sctk --help".
const Long = `sctk - software composition analysis toolkit

Utilities that read a table (CSV, XLSX or JSON), transform its rows and
write a table: license expression simplification and enrichment, path
suffix matching, Debian Contents lookup, scanner output conversion and
generic column operations.`

// Examples is shown below the command list.
const Examples = `  sctk simplify "mit AND (mit OR apache-2.0)"        # Simplify an expression
  sctk simplify --promote-exceptions "gpl-2.0 WITH classpath-exception-2.0"
  sctk lcat bom.xlsx out.xlsx --license-data licenses.json
  sctk column-match scan.csv inventory.csv out.csv --key1 path --key2 path
  sctk system-file-index files.xlsx out.xlsx            # Lookup Debian packages
  sctk sbom-to-bom image.cdx.json bom.xlsx              # CycloneDX/SPDX/Syft to BOM
  sctk check bom.xlsx checked.xlsx --policy policy.toml # Attention column
  sctk view bom.xlsx --title Name                       # Interactive browser
  sctk serve --port 8080                                # HTTP API`

// BrowserKeys documents the interactive browser.
const BrowserKeys = `Keys:
  ↑/↓, j/k    Navigate rows
  Enter       View row details
  J           View row as JSON (from details)
  /           Search all columns
  f           Filter by column (col=value or col=value)
  c           Clear search and filter
  ?           Column statistics
  Esc         Go back
  q           Quit`
