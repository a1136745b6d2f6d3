package sanitizer

// VMOnlyMarker tags instruction blocks that run entirely on the lab VM.
const VMOnlyMarker = "VM-ONLY LAB: No portal access required"

const vmOnlyComment = "/**\n     * " + VMOnlyMarker + "\n     */"

var defaultProbes = []Probe{
	{Name: "Azure Portal", Pattern: `Azure Portal`},
	{Name: "Create Azure", Pattern: `Create.*?Azure`},
	{Name: "Cloud Shell", Pattern: `Cloud Shell`},
}

func step(name, phrase string) Rule {
	return Rule{Name: name, Kind: StepRule, Pattern: phrase}
}

func text(name, pattern, replace string) Rule {
	return Rule{Name: name, Kind: TextRule, Pattern: pattern, Replace: replace}
}

func exact(name, pattern, replace string) Rule {
	return Rule{Name: name, Kind: TextRule, Pattern: pattern, Replace: replace, CaseSensitive: true}
}

var cleanup = Rule{Name: "cleanup-syntax", Kind: CleanupRule}

// portalComment rewrites a single JSDoc comment that advertises portal
// access. It never spans more than one comment.
var portalComment = text("portal-access-comment",
	`/\*\*\n[ \t]*\*[^\n]*Azure Portal Access[^\n]*\n[ \t]*\*/`,
	vmOnlyComment)

var portalFallback = text("portal-fallback", `Azure Portal`, "lab VM")

func builtinProfiles() []Profile {
	return []Profile{
		{
			Name:         "mark",
			Description:  "Back up the lab file, mark exempt courses as VM-only and rewrite portal step actions",
			Source:       SourceWorking,
			CreateBackup: true,
			Marker:       VMOnlyMarker,
			Rules: []Rule{
				exact("portal-prerequisite", `'Access to Azure Portal'`, `'RDP access to the lab VM'`),
				text("open-portal-action",
					`action:\s*['"]Open the Azure Portal[^'"]*['"]`,
					`action: "Connect to the VM using RDP (credentials in Resources tab)"`),
				text("navigate-portal-action",
					`action:\s*['"][^'"]*?navigate to[^'"]*?Azure Portal[^'"]*['"]`,
					`action: "Open Server Manager or the relevant Windows administrative tool"`),
				text("cloud-shell-action",
					`action:\s*['"][^'"]*?Cloud Shell[^'"]*['"]`,
					`action: "Open PowerShell on the VM"`),
				text("resource-group-action",
					`action:\s*['"]Create a resource group[^'"]*['"]`,
					`action: "Use the pre-configured VM environment"`),
				portalFallback,
			},
			Probes: defaultProbes,
		},
		{
			Name:        "safe",
			Description: "Text-only replacements from the backup; never removes structure",
			Source:      SourceBackup,
			Rules: []Rule{
				exact("portal-access-comment",
					`/\*\*\n\s+\*\s+Enables Azure Portal Access \(for hybrid scenarios\)\n\s+\*/`,
					vmOnlyComment),
				exact("portal-prerequisite", `'Access to Azure Portal'`, `'RDP access to the lab VM'`),
				exact("open-portal", `'Open Azure Portal`, `'Connect to the VM using RDP`),
				exact("in-portal", `'In the Azure Portal,`, `'In the VM,`),
				exact("open-cloud-shell", `'Open Cloud Shell'`, `'Open PowerShell'`),
				exact("in-cloud-shell", `'In Cloud Shell,`, `'In PowerShell,`),
				portalFallback,
			},
			Probes: defaultProbes,
		},
		{
			Name:        "aggressive",
			Description: "Remove portal and resource-creation steps, then rewrite what is left",
			Source:      SourcePreferBackup,
			Rules: []Rule{
				exact("portal-prerequisite", `'Access to Azure Portal'`, `'RDP access to the lab VM'`),
				step("portal-step", `Azure Portal`),
				step("portal-url-step", `portal\.azure\.com`),
				step("create-azure-step", `Create[^'"]*?Azure`),
				step("cloud-shell-step", `Cloud Shell`),
				step("resource-group-step", `resource group`),
				step("app-service-step", `App Service`),
				step("virtual-network-step", `Virtual Network`),
				step("storage-account-step", `Storage Account`),
				text("portal-knowledge-block",
					`[ \t]*\{\s*type:\s*['"](?:note|tip|warning)['"],\s*title:\s*['"][^'"]*Azure Portal[^'"]*['"],[^}]*\},?[ \t]*\n?`,
					""),
				portalComment,
				cleanup,
				text("open-portal", `Open the Azure Portal`, "Connect to the VM using RDP"),
				text("in-portal", `In the Azure Portal,?\s*`, "In the VM, "),
				text("portal-url", `portal\.azure\.com`, "the VM desktop"),
				text("cloud-shell", `Cloud Shell`, "PowerShell"),
				text("azure-resource", `Azure resource`, "VM resource"),
				portalFallback,
			},
			Probes: defaultProbes,
		},
		{
			Name:        "final",
			Description: "Rebuild exempt courses from the backup as VM-only labs",
			Source:      SourceBackup,
			Rules: []Rule{
				text("arc-description", `set up hybrid management with Azure Arc`, "configure local server management"),
				text("deploy-azure-objective", `(?m)^[ \t]*'Deploy[^'\n]*?Azure[^'\n]*',?[ \t]*\n`, ""),
				text("azure-arc-objective", `(?m)^[ \t]*'[^'\n]*Azure Arc[^'\n]*',?[ \t]*\n`, ""),
				exact("portal-prerequisite", `'Access to Azure Portal'`, `'RDP access to the lab VM'`),
				step("portal-step", `Azure Portal`),
				step("create-azure-step", `Create[^'"]*?Azure`),
				step("cloud-shell-step", `Cloud Shell`),
				portalComment,
				cleanup,
				text("open-portal-search", `Open the Azure Portal and search for`, "On the VM, open Server Manager and navigate to"),
				text("open-portal", `Open Azure Portal`, "Connect to the VM using RDP"),
				text("in-portal", `In the Azure Portal,?\s*`, "In the VM, "),
				text("navigate-portal", `Navigate to the Azure Portal`, "Open Server Manager"),
				text("portal-url", `portal\.azure\.com`, "the VM desktop"),
				text("open-cloud-shell", `Open Cloud Shell`, "Open PowerShell"),
				text("in-cloud-shell", `In Cloud Shell,?\s*`, "In PowerShell, "),
				text("cloud-shell", `Cloud Shell`, "PowerShell"),
				text("create-resource-group", `Create a resource group`, "Use the pre-configured environment"),
				text("create-azure-vm", `Create[^'"\n]*?Azure[^'"\n]*?virtual machine`, "Use the provided VM"),
				text("deploy-to-azure", `Deploy[^'"\n]*?to Azure`, "Configure on the local VM"),
				text("onboard-arc", `Onboard[^'"\n]*?to Azure Arc`, "Configure local management tools"),
				text("azure-arc", `Azure Arc`, "local management"),
				text("in-azure", `\bin Azure\b`, "on the VM"),
				text("azure-resource", `Azure resource`, "VM resource"),
				portalFallback,
			},
			Probes: defaultProbes,
		},
	}
}
