/*
 * Copyright 2025 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package schema

// Document is a piece of retrieved content with its metadata.
type Document struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	MetaData map[string]any `json:"meta_data"`
}

// String returns the content of the document.
func (d *Document) String() string {
	return d.Content
}

// Score reads the "_score" entry of the metadata, 0 when absent.
func (d *Document) Score() float64 {
	if d.MetaData == nil {
		return 0
	}
	s, ok := d.MetaData["_score"].(float64)
	if !ok {
		return 0
	}
	return s
}

// WithScore sets the "_score" metadata entry and returns the document.
func (d *Document) WithScore(score float64) *Document {
	if d.MetaData == nil {
		d.MetaData = map[string]any{}
	}
	d.MetaData["_score"] = score
	return d
}
