// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package catalog holds the static catalog of OpenRouter models the client
// can talk to, along with their context sizes and capabilities.
//
// The catalog drives the model picker, capability checks (a reasoning
// request is only issued when the selected model supports reasoning), and
// the `models` CLI subcommand.
package catalog

import "sort"

// =============================================================================
// TYPES
// =============================================================================

// Capabilities flags what a model is good at beyond plain chat.
type Capabilities struct {
	Reasoning bool
	Code      bool
	Vision    bool
}

// ModelInfo describes one selectable model.
type ModelInfo struct {
	ID          string
	Name        string
	ContextSize int
	Category    string
	Capabilities
}

// Model categories used for grouping in the picker.
const (
	CategorySmall     = "Small"
	CategoryPopular   = "Popular"
	CategoryLarge     = "Large"
	CategoryReasoning = "Reasoning"
	CategoryCode      = "Code"
	CategoryVision    = "Vision"
)

// DefaultModelID is the model used when no preference is stored.
const DefaultModelID = "meta-llama/llama-3.3-70b-instruct:free"

// =============================================================================
// CATALOG DATA
// =============================================================================

var models = []ModelInfo{
	// Meta
	{ID: "meta-llama/llama-3.3-70b-instruct:free", Name: "Llama 3.3 70B Instruct", ContextSize: 131072, Category: CategoryLarge},
	{ID: "meta-llama/llama-3.3-8b-instruct:free", Name: "Llama 3.3 8B Instruct", ContextSize: 128000, Category: CategoryPopular},
	{ID: "meta-llama/llama-4-maverick:free", Name: "Llama 4 Maverick", ContextSize: 256000, Category: CategoryPopular},
	{ID: "meta-llama/llama-4-scout:free", Name: "Llama 4 Scout", ContextSize: 256000, Category: CategoryPopular},
	{ID: "meta-llama/llama-3.2-3b-instruct:free", Name: "Llama 3.2 3B Instruct", ContextSize: 20000, Category: CategorySmall},
	{ID: "meta-llama/llama-3.2-1b-instruct:free", Name: "Llama 3.2 1B Instruct", ContextSize: 131000, Category: CategorySmall},
	{ID: "meta-llama/llama-3.2-11b-vision-instruct:free", Name: "Llama 3.2 11B Vision", ContextSize: 131072, Category: CategoryPopular, Capabilities: Capabilities{Vision: true}},
	{ID: "meta-llama/llama-3.1-405b:free", Name: "Llama 3.1 405B", ContextSize: 64000, Category: CategoryLarge},
	{ID: "meta-llama/llama-3.1-8b-instruct:free", Name: "Llama 3.1 8B Instruct", ContextSize: 131072, Category: CategoryPopular},

	// Microsoft
	{ID: "microsoft/phi-4-reasoning-plus:free", Name: "Phi 4 Reasoning Plus", ContextSize: 32768, Category: CategoryReasoning, Capabilities: Capabilities{Reasoning: true}},
	{ID: "microsoft/phi-4-reasoning:free", Name: "Phi 4 Reasoning", ContextSize: 32768, Category: CategoryReasoning, Capabilities: Capabilities{Reasoning: true}},
	{ID: "microsoft/mai-ds-r1:free", Name: "MAI DS R1", ContextSize: 163840, Category: CategoryReasoning, Capabilities: Capabilities{Reasoning: true}},

	// Google
	{ID: "google/gemini-2.5-pro-exp-03-25", Name: "Gemini 2.5 Pro", ContextSize: 1048576, Category: CategoryLarge},
	{ID: "google/gemini-2.0-flash-exp:free", Name: "Gemini 2.0 Flash", ContextSize: 1048576, Category: CategoryPopular},
	{ID: "google/gemma-3-1b-it:free", Name: "Gemma 3 1B", ContextSize: 32768, Category: CategorySmall},
	{ID: "google/gemma-3-4b-it:free", Name: "Gemma 3 4B", ContextSize: 131072, Category: CategoryPopular},
	{ID: "google/gemma-3-12b-it:free", Name: "Gemma 3 12B", ContextSize: 131072, Category: CategoryPopular},
	{ID: "google/gemma-3-27b-it:free", Name: "Gemma 3 27B", ContextSize: 96000, Category: CategoryLarge},
	{ID: "google/gemma-2-9b-it:free", Name: "Gemma 2 9B", ContextSize: 8192, Category: CategoryPopular},

	// Qwen
	{ID: "qwen/qwen3-0.6b-04-28:free", Name: "Qwen3 0.6B", ContextSize: 32000, Category: CategorySmall},
	{ID: "qwen/qwen3-1.7b:free", Name: "Qwen3 1.7B", ContextSize: 32000, Category: CategorySmall},
	{ID: "qwen/qwen3-4b:free", Name: "Qwen3 4B", ContextSize: 128000, Category: CategoryPopular},
	{ID: "qwen/qwen3-30b-a3b:free", Name: "Qwen3 30B", ContextSize: 40960, Category: CategoryLarge},
	{ID: "qwen/qwen3-8b:free", Name: "Qwen3 8B", ContextSize: 40960, Category: CategoryPopular},
	{ID: "qwen/qwen3-14b:free", Name: "Qwen3 14B", ContextSize: 40960, Category: CategoryLarge},
	{ID: "qwen/qwen3-32b:free", Name: "Qwen3 32B", ContextSize: 40960, Category: CategoryLarge},
	{ID: "qwen/qwen3-235b-a22b:free", Name: "Qwen3 235B", ContextSize: 40960, Category: CategoryLarge},
	{ID: "qwen/qwq-32b:free", Name: "QwQ 32B", ContextSize: 40000, Category: CategoryLarge},
	{ID: "arliai/qwq-32b-arliai-rpr-v1:free", Name: "QwQ 32B RpR", ContextSize: 32768, Category: CategoryReasoning, Capabilities: Capabilities{Reasoning: true}},
	{ID: "qwen/qwen-2.5-coder-32b-instruct:free", Name: "Qwen2.5 Coder 32B", ContextSize: 32768, Category: CategoryCode, Capabilities: Capabilities{Code: true}},
	{ID: "qwen/qwen-2.5-7b-instruct:free", Name: "Qwen2.5 7B", ContextSize: 32768, Category: CategoryPopular},
	{ID: "qwen/qwen-2.5-72b-instruct:free", Name: "Qwen2.5 72B", ContextSize: 32768, Category: CategoryLarge},
	{ID: "qwen/qwen2.5-vl-3b-instruct:free", Name: "Qwen2.5 VL 3B", ContextSize: 64000, Category: CategorySmall, Capabilities: Capabilities{Vision: true}},
	{ID: "qwen/qwen-2.5-vl-7b-instruct:free", Name: "Qwen2.5 VL 7B", ContextSize: 64000, Category: CategoryPopular, Capabilities: Capabilities{Vision: true}},
	{ID: "qwen/qwen2.5-vl-32b-instruct:free", Name: "Qwen2.5 VL 32B", ContextSize: 8192, Category: CategoryLarge, Capabilities: Capabilities{Vision: true}},
	{ID: "qwen/qwen2.5-vl-72b-instruct:free", Name: "Qwen2.5 VL 72B", ContextSize: 131072, Category: CategoryLarge, Capabilities: Capabilities{Vision: true}},

	// DeepSeek
	{ID: "deepseek/deepseek-prover-v2:free", Name: "DeepSeek Prover V2", ContextSize: 163840, Category: CategoryReasoning, Capabilities: Capabilities{Reasoning: true}},
	{ID: "tngtech/deepseek-r1t-chimera:free", Name: "DeepSeek R1T Chimera", ContextSize: 163840, Category: CategoryReasoning, Capabilities: Capabilities{Reasoning: true}},
	{ID: "deepseek/deepseek-v3-base:free", Name: "DeepSeek V3 Base", ContextSize: 163840, Category: CategoryReasoning, Capabilities: Capabilities{Reasoning: true}},
	{ID: "deepseek/deepseek-chat-v3-0324:free", Name: "DeepSeek V3 0324", ContextSize: 163840, Category: CategoryReasoning, Capabilities: Capabilities{Reasoning: true}},
	{ID: "deepseek/deepseek-r1-zero:free", Name: "DeepSeek R1 Zero", ContextSize: 128000, Category: CategoryReasoning, Capabilities: Capabilities{Reasoning: true}},
	{ID: "deepseek/deepseek-r1:free", Name: "DeepSeek R1", ContextSize: 163840, Category: CategoryReasoning, Capabilities: Capabilities{Reasoning: true}},
	{ID: "deepseek/deepseek-chat:free", Name: "DeepSeek V3", ContextSize: 163840, Category: CategoryReasoning, Capabilities: Capabilities{Reasoning: true}},
	{ID: "deepseek/deepseek-r1-distill-qwen-32b:free", Name: "DeepSeek R1 Qwen 32B", ContextSize: 16000, Category: CategoryReasoning, Capabilities: Capabilities{Reasoning: true}},
	{ID: "deepseek/deepseek-r1-distill-qwen-14b:free", Name: "DeepSeek R1 Qwen 14B", ContextSize: 64000, Category: CategoryReasoning, Capabilities: Capabilities{Reasoning: true}},
	{ID: "deepseek/deepseek-r1-distill-llama-70b:free", Name: "DeepSeek R1 Llama 70B", ContextSize: 8192, Category: CategoryReasoning, Capabilities: Capabilities{Reasoning: true}},

	// Mistral
	{ID: "mistralai/mistral-small-3.1-24b-instruct:free", Name: "Mistral Small 3.1 24B", ContextSize: 96000, Category: CategoryPopular},
	{ID: "mistralai/mistral-small-24b-instruct-2501:free", Name: "Mistral Small 24B", ContextSize: 32768, Category: CategoryPopular},
	{ID: "mistralai/mistral-nemo:free", Name: "Mistral Nemo", ContextSize: 128000, Category: CategoryPopular},
	{ID: "mistralai/mistral-7b-instruct:free", Name: "Mistral 7B", ContextSize: 32768, Category: CategoryPopular},

	// THUDM
	{ID: "thudm/glm-z1-9b:free", Name: "GLM Z1 9B", ContextSize: 32000, Category: CategoryPopular},
	{ID: "thudm/glm-4-9b:free", Name: "GLM 4 9B", ContextSize: 32000, Category: CategoryPopular},
	{ID: "thudm/glm-z1-32b:free", Name: "GLM Z1 32B", ContextSize: 32768, Category: CategoryLarge},
	{ID: "thudm/glm-4-32b:free", Name: "GLM 4 32B", ContextSize: 32768, Category: CategoryLarge},

	// Nous Research
	{ID: "nousresearch/deephermes-3-mistral-24b-preview:free", Name: "DeepHermes 3 Mistral 24B", ContextSize: 32768, Category: CategoryReasoning, Capabilities: Capabilities{Reasoning: true}},
	{ID: "nousresearch/deephermes-3-llama-3-8b-preview:free", Name: "DeepHermes 3 Llama 8B", ContextSize: 131072, Category: CategoryReasoning, Capabilities: Capabilities{Reasoning: true}},

	// Others
	{ID: "shisa-ai/shisa-v2-llama3.3-70b:free", Name: "Shisa V2 70B", ContextSize: 32768, Category: CategoryLarge},
	{ID: "agentica-org/deepcoder-14b-preview:free", Name: "Deepcoder 14B", ContextSize: 96000, Category: CategoryCode, Capabilities: Capabilities{Code: true}},
	{ID: "nvidia/llama-3.3-nemotron-super-49b-v1:free", Name: "NVIDIA Nemotron Super 49B", ContextSize: 131072, Category: CategoryLarge},
	{ID: "nvidia/llama-3.1-nemotron-ultra-253b-v1:free", Name: "NVIDIA Nemotron Ultra 253B", ContextSize: 131072, Category: CategoryLarge},
	{ID: "featherless/qwerky-72b:free", Name: "Qwerky 72B", ContextSize: 32768, Category: CategoryLarge},
	{ID: "open-r1/olympiccoder-32b:free", Name: "OlympicCoder 32B", ContextSize: 32768, Category: CategoryCode, Capabilities: Capabilities{Code: true}},
	{ID: "rekaai/reka-flash-3:free", Name: "Reka Flash 3", ContextSize: 32768, Category: CategoryPopular},
	{ID: "moonshotai/moonlight-16b-a3b-instruct:free", Name: "Moonlight 16B", ContextSize: 8192, Category: CategoryPopular},
	{ID: "cognitivecomputations/dolphin3.0-r1-mistral-24b:free", Name: "Dolphin 3.0 R1 24B", ContextSize: 32768, Category: CategoryPopular},
	{ID: "cognitivecomputations/dolphin3.0-mistral-24b:free", Name: "Dolphin 3.0 24B", ContextSize: 32768, Category: CategoryPopular},
	{ID: "moonshotai/kimi-vl-a3b-thinking:free", Name: "Kimi VL A3B Thinking", ContextSize: 131072, Category: CategoryVision, Capabilities: Capabilities{Vision: true}},
	{ID: "opengvlab/internvl3-14b:free", Name: "InternVL3 14B", ContextSize: 32000, Category: CategoryVision, Capabilities: Capabilities{Vision: true}},
	{ID: "opengvlab/internvl3-2b:free", Name: "InternVL3 2B", ContextSize: 32000, Category: CategorySmall, Capabilities: Capabilities{Vision: true}},
	{ID: "bytedance-research/ui-tars-72b:free", Name: "UI-TARS 72B", ContextSize: 32768, Category: CategoryLarge},
}

var byID = func() map[string]ModelInfo {
	m := make(map[string]ModelInfo, len(models))
	for _, info := range models {
		m[info.ID] = info
	}
	return m
}()

// =============================================================================
// LOOKUPS
// =============================================================================

// All returns every model in the catalog in declaration order.
// The returned slice is a copy; callers may reorder it freely.
func All() []ModelInfo {
	out := make([]ModelInfo, len(models))
	copy(out, models)
	return out
}

// ByID returns the model with the given ID.
func ByID(id string) (ModelInfo, bool) {
	info, ok := byID[id]
	return info, ok
}

// Default returns the default model.
func Default() ModelInfo {
	info, _ := byID[DefaultModelID]
	return info
}

// ByCategory returns all models in the given category.
func ByCategory(category string) []ModelInfo {
	var out []ModelInfo
	for _, info := range models {
		if info.Category == category {
			out = append(out, info)
		}
	}
	return out
}

// Reasoning returns all models with the reasoning capability.
func Reasoning() []ModelInfo {
	var out []ModelInfo
	for _, info := range models {
		if info.Capabilities.Reasoning {
			out = append(out, info)
		}
	}
	return out
}

// Categories returns the distinct categories present in the catalog,
// sorted in picker display order.
func Categories() []string {
	order := map[string]int{
		CategoryPopular:   0,
		CategorySmall:     1,
		CategoryLarge:     2,
		CategoryReasoning: 3,
		CategoryCode:      4,
		CategoryVision:    5,
	}
	seen := make(map[string]bool)
	var out []string
	for _, info := range models {
		if !seen[info.Category] {
			seen[info.Category] = true
			out = append(out, info.Category)
		}
	}
	sort.Slice(out, func(i, j int) bool { return order[out[i]] < order[out[j]] })
	return out
}

// SupportsReasoning reports whether the model with the given ID can follow
// structured reasoning prompts. Unknown IDs report false.
func SupportsReasoning(id string) bool {
	info, ok := byID[id]
	return ok && info.Capabilities.Reasoning
}
