package ace

// UserAgent is sent on every ACE API request. The backend rejects
// unknown clients, so this tracks the CLI version the API expects.
const UserAgent = "augment.cli/0.12.0"

// Default models per endpoint.
const (
	DefaultModel       = "claude-sonnet-4-5"
	DefaultClaudeModel = "claude-sonnet-4-5-20250929"
	DefaultOpenAIModel = "gpt-5.2-codex"
	DefaultGeminiModel = "gemini-3-flash-preview"
)

const enhancePromptTemplate = `⚠️ NO TOOLS ALLOWED ⚠️

Here is an instruction that I'd like to give you, but it needs to be improved. Rewrite and enhance this instruction to make it clearer, more specific, less ambiguous, and correct any mistakes. Do not use any tools: reply immediately with your answer, even if you're not sure. Consider the context of our conversation history when enhancing the prompt. If there is code in triple backticks (` + "```" + `) consider whether it is a code sample and should remain unchanged.Reply with the following format:

### BEGIN RESPONSE ###
Here is an enhanced version of the original instruction that is more specific and clear:
<augment-enhanced-prompt>enhanced prompt goes here</augment-enhanced-prompt>

### END RESPONSE ###

Here is my original instruction:

{original_prompt}`

const iterativeEnhanceTemplate = `⚠️ NO TOOLS ALLOWED ⚠️

You are performing an ITERATIVE ENHANCEMENT on an already-enhanced prompt. The user has reviewed and possibly edited the previous enhancement. Your task is to further refine and optimize while PRESERVING the user's modifications and intent.

**Context:**
- Original prompt: {original_prompt}
- Previous enhancement: {previous_enhanced}
- Current version (user may have edited): {current_prompt}

**Instructions:**
1. Identify what the user changed from the previous enhancement (their edits reflect their intent)
2. PRESERVE the user's modifications - do not revert their changes
3. Further optimize clarity, specificity, and correctness
4. If the user made no changes, provide alternative improvements or deeper refinement
5. Do not use any tools: reply immediately

Reply with the following format:

### BEGIN RESPONSE ###
<augment-enhanced-prompt>iteratively enhanced prompt goes here</augment-enhanced-prompt>
### END RESPONSE ###`

// TextExtensions is the file extension allowlist shared by the indexer
// and the local search fallback.
var TextExtensions = map[string]bool{
	".py": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true, ".mjs": true, ".cjs": true,
	".java": true, ".go": true, ".rs": true, ".cpp": true, ".c": true, ".cc": true, ".h": true,
	".hpp": true, ".hxx": true, ".cs": true,
	".rb": true, ".php": true, ".swift": true, ".kt": true, ".kts": true, ".scala": true,
	".clj": true, ".cljs": true,
	".lua": true, ".dart": true, ".m": true, ".mm": true, ".pl": true, ".pm": true,
	".r": true, ".jl": true,
	".ex": true, ".exs": true, ".erl": true, ".hs": true, ".zig": true, ".v": true,
	".nim": true, ".f90": true, ".f95": true,
	".groovy": true, ".gradle": true, ".sol": true, ".move": true,
	".md": true, ".mdx": true, ".txt": true, ".json": true, ".jsonc": true, ".json5": true,
	".yaml": true, ".yml": true, ".toml": true, ".xml": true, ".ini": true, ".conf": true,
	".cfg": true, ".properties": true,
	".html": true, ".htm": true, ".css": true, ".scss": true, ".sass": true, ".less": true,
	".styl": true,
	".vue": true, ".svelte": true, ".astro": true,
	".ejs": true, ".hbs": true, ".pug": true, ".jade": true, ".jinja": true, ".jinja2": true,
	".erb": true,
	".sql": true, ".sh": true, ".bash": true, ".zsh": true, ".fish": true, ".ps1": true,
	".bat": true, ".cmd": true,
	".graphql": true, ".gql": true, ".proto": true, ".prisma": true,
}

// ExcludeDirs names directories skipped by the indexer and file tools.
var ExcludeDirs = map[string]bool{
	".venv": true, "venv": true, ".env": true, "env": true, "node_modules": true, "vendor": true,
	".pnpm": true, ".yarn": true, "bower_components": true,
	".git": true, ".svn": true, ".hg": true,
	"__pycache__": true, ".pytest_cache": true, ".mypy_cache": true, ".tox": true, ".ruff_cache": true,
	"dist": true, "build": true, "target": true, "out": true, "bin": true, "obj": true,
	".next": true, ".nuxt": true, ".output": true, ".vercel": true, ".netlify": true, ".turbo": true,
	".parcel-cache": true, ".cache": true, ".temp": true, ".tmp": true,
	"coverage": true, ".nyc_output": true, "htmlcov": true,
	".idea": true, ".vscode": true, ".vs": true,
	".ace-tool": true,
}

// BinaryExtensions are rejected before the allowlist is consulted.
var BinaryExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".ico": true,
	".svg": true, ".webp": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true, ".wav": true, ".ogg": true, ".flv": true,
	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".7z": true, ".rar": true, ".xz": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".o": true, ".a": true, ".lib": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true, ".ppt": true, ".pptx": true,
	".woff": true, ".woff2": true, ".ttf": true, ".otf": true, ".eot": true,
	".pyc": true, ".pyo": true, ".class": true, ".jar": true,
	".db": true, ".sqlite": true, ".sqlite3": true,
	".bin": true, ".dat": true, ".pak": true, ".bundle": true,
}
